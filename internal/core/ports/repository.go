package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
)

// Collection names as used by change events and watch filters.
const (
	CollectionRooms    = "rooms"
	CollectionTickets  = "tickets"
	CollectionRequests = "requests"
	CollectionLeave    = "leave"
	CollectionLaundry  = "laundry"
	CollectionStock    = "stock"
	CollectionStaff    = "staff"
)

// ChangeEvent describes one committed document write. Versions are
// monotonically increasing per document, assigned by the store adapter; a
// subscriber must never observe version n after n+1 for the same key.
type ChangeEvent struct {
	Collection string            `json:"collection"`
	Key        string            `json:"key"`
	Version    int64             `json:"version"`
	Deleted    bool              `json:"deleted,omitempty"`
	Doc        json.RawMessage   `json:"doc,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// ChangeSink receives committed change events from a store adapter. The
// sync hub implements it; adapters call it after, never before, a write is
// durable.
type ChangeSink interface {
	Publish(evt ChangeEvent)
}

// Every Update call is linearized per document by the adapter: the mutator
// runs against the current committed version and its result replaces that
// version atomically, so state-machine guards inside the mutator see fresh
// state. There is no cross-document transaction; the coordinator owns every
// invariant spanning more than one document.

type RoomRepository interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
	// Put upserts by key. Used by provisioning only; commands go through
	// Update so guards run against current state.
	Put(ctx context.Context, room *domain.Room) error
	Update(ctx context.Context, id string, mutate func(*domain.Room) error) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
}

type TicketRepository interface {
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error)
	// Delete exists solely as the compensating write for a ticket whose
	// dependent room update failed.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Ticket, error)
	ListOpenByRoom(ctx context.Context, roomID string) ([]domain.Ticket, error)
}

type RequestRepository interface {
	Get(ctx context.Context, id string) (*domain.Request, error)
	Create(ctx context.Context, request *domain.Request) error
	Update(ctx context.Context, id string, mutate func(*domain.Request) error) (*domain.Request, error)
	List(ctx context.Context) ([]domain.Request, error)
	ListBySender(ctx context.Context, senderID string) ([]domain.Request, error)
	ListByReceiver(ctx context.Context, receiverID string) ([]domain.Request, error)
}

type LeaveRepository interface {
	Get(ctx context.Context, id string) (*domain.LeaveApplication, error)
	Create(ctx context.Context, leave *domain.LeaveApplication) error
	Update(ctx context.Context, id string, mutate func(*domain.LeaveApplication) error) (*domain.LeaveApplication, error)
	// Delete supports explicit administrative removal; nothing references
	// leave applications transactionally.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.LeaveApplication, error)
}

type LaundryRepository interface {
	Get(ctx context.Context, id string) (*domain.LaundryBatch, error)
	Create(ctx context.Context, batch *domain.LaundryBatch) error
	Update(ctx context.Context, id string, mutate func(*domain.LaundryBatch) error) (*domain.LaundryBatch, error)
	List(ctx context.Context) ([]domain.LaundryBatch, error)
}

type StockRepository interface {
	Get(ctx context.Context, id string) (*domain.StockItem, error)
	// Put is last-write-wins by design: stock is a manually reconciled
	// ledger with no reservation protocol.
	Put(ctx context.Context, item *domain.StockItem) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.StockItem, error)
}

type StaffRepository interface {
	Get(ctx context.Context, id string) (*domain.Staff, error)
	Create(ctx context.Context, staff *domain.Staff) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Staff, error)
}

// AuditFilter narrows the export feed. Zero values mean "no constraint".
type AuditFilter struct {
	Actor  string
	Action domain.AuditAction
	Since  time.Time
	Until  time.Time
	Limit  int
}

type AuditRepository interface {
	Append(ctx context.Context, record *domain.AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, error)
}

// Store bundles the per-collection repositories of one document store.
type Store interface {
	Rooms() RoomRepository
	Tickets() TicketRepository
	Requests() RequestRepository
	Leave() LeaveRepository
	Laundry() LaundryRepository
	Stock() StockRepository
	Staff() StaffRepository
	Audit() AuditRepository
	// Snapshot returns one collection's current documents as change
	// events, carrying the versions a fresh subscription seeds from.
	Snapshot(ctx context.Context, collection string) ([]ChangeEvent, error)
}
