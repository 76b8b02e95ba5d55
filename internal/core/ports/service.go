package ports

import (
	"context"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
)

// MaintenanceService covers the room/ticket surface. All three operations
// are compound: the coordinator keeps the room and its tickets in agreement.
type MaintenanceService interface {
	CreateTicket(ctx context.Context, roomID, issue, reportedBy string) (*domain.Ticket, error)
	ResolveTicket(ctx context.Context, ticketID, resolvedBy string) (*domain.Ticket, error)
	SetRoomStatus(ctx context.Context, roomID string, status domain.RoomStatus, actor string) (*domain.Room, error)
}

type RequestService interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*domain.Request, error)
	Respond(ctx context.Context, requestID, actorID string, decision domain.RequestDecision, reason string) (*domain.Request, error)
	Complete(ctx context.Context, requestID, actorID, remark string) (*domain.Request, error)
}

type LeaveService interface {
	Apply(ctx context.Context, userID, leaveType, remarks string) (*domain.LeaveApplication, error)
	Decide(ctx context.Context, leaveID, actorID string, decision domain.LeaveDecision) (*domain.LeaveApplication, error)
	Remove(ctx context.Context, leaveID, actor string) error
}

type LaundryService interface {
	SendBatch(ctx context.Context, sentBy string, items map[string]int) (*domain.LaundryBatch, error)
	AdjudicateItem(ctx context.Context, batchID, itemName string, verdict domain.ItemVerdict, remark, actor string) (*domain.LaundryBatch, error)
	FinalizeBatch(ctx context.Context, batchID, receivedBy string, overrideUnadjudicated bool) (*domain.LaundryBatch, error)
}

type StockService interface {
	Upsert(ctx context.Context, item *domain.StockItem, actor string) (*domain.StockItem, error)
	Remove(ctx context.Context, itemID, actor string) error
	List(ctx context.Context) ([]domain.StockItem, error)
}

type StaffService interface {
	Create(ctx context.Context, loginID, name string, role domain.StaffRole, actor string) (*domain.Staff, error)
	Remove(ctx context.Context, staffID, actor string) error
	List(ctx context.Context) ([]domain.Staff, error)
}

// AuditService exposes the read-only export feed; administrative callers
// only, enforced at the transport layer.
type AuditService interface {
	Export(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error)
}
