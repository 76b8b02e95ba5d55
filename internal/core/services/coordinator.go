package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// Coordinator owns every invariant that spans more than one document. The
// store offers no cross-document transaction, so compound operations apply
// their writes in a fixed order and compensate on partial failure:
//
//   - ticket before room, always. An open ticket whose room is not yet in
//     maintenance is detectable and safe to retry; a room stuck in
//     maintenance with no ticket is a silent orphan.
//   - when a compensating write also fails, the caller gets a
//     PartialFailureError naming the documents left inconsistent. Nothing
//     fails silently and nothing retries automatically.
type Coordinator struct {
	store ports.Store
	audit *AuditRecorder
	nowFn func() time.Time
	newID func() string
}

var _ ports.MaintenanceService = (*Coordinator)(nil)

func NewCoordinator(store ports.Store, audit *AuditRecorder) *Coordinator {
	return &Coordinator{
		store: store,
		audit: audit,
		nowFn: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// CreateTicket records an issue against a room and drives the room to
// maintenance as one logical unit.
func (c *Coordinator) CreateTicket(ctx context.Context, roomID, issue, reportedBy string) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(c.newID(), roomID, issue, reportedBy, c.nowFn())
	if err != nil {
		return nil, err
	}
	if _, err := c.store.Rooms().Get(ctx, roomID); err != nil {
		return nil, err
	}

	if err := c.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, err
	}
	if _, err := c.store.Rooms().Update(ctx, roomID, func(r *domain.Room) error {
		r.EnterMaintenance()
		return nil
	}); err != nil {
		// Compensate: remove the ticket so the pair stays in agreement.
		if delErr := c.store.Tickets().Delete(ctx, ticket.ID); delErr != nil {
			return nil, &domain.PartialFailureError{
				Entities: []string{"ticket/" + ticket.ID, "room/" + roomID},
				Detail:   "ticket created but room not set to maintenance, and the compensating delete failed",
				Cause:    errors.Join(err, delErr),
			}
		}
		return nil, err
	}

	c.audit.Record(ctx, ticket.ReportedBy, domain.ActionTicketCreate,
		fmt.Sprintf("room %s: %s", roomID, issue))
	c.audit.Record(ctx, ticket.ReportedBy, domain.ActionRoomUpdate,
		fmt.Sprintf("room %s set to maintenance", roomID))
	return ticket, nil
}

// ResolveTicket stamps the resolution and, when it was the room's last open
// ticket, returns the room to vacant.
func (c *Coordinator) ResolveTicket(ctx context.Context, ticketID, resolvedBy string) (*domain.Ticket, error) {
	if resolvedBy == "" {
		return nil, &domain.ValidationError{Field: "resolvedBy", Reason: "must not be empty"}
	}

	ticket, err := c.store.Tickets().Update(ctx, ticketID, func(t *domain.Ticket) error {
		return t.Resolve(resolvedBy, c.nowFn())
	})
	if err != nil {
		return nil, err
	}

	roomCleared, err := c.reevaluateRoom(ctx, ticket.RoomID)
	if err != nil {
		// Compensate: put the ticket back the way it was.
		if _, compErr := c.store.Tickets().Update(ctx, ticketID, func(t *domain.Ticket) error {
			t.Reopen()
			return nil
		}); compErr != nil {
			return nil, &domain.PartialFailureError{
				Entities: []string{"ticket/" + ticketID, "room/" + ticket.RoomID},
				Detail:   "ticket resolved but room re-evaluation failed, and the compensating reopen failed",
				Cause:    errors.Join(err, compErr),
			}
		}
		return nil, err
	}

	c.audit.Record(ctx, resolvedBy, domain.ActionTicketResolve,
		fmt.Sprintf("room %s: %s", ticket.RoomID, ticket.Issue))
	if roomCleared {
		c.audit.Record(ctx, resolvedBy, domain.ActionRoomUpdate,
			fmt.Sprintf("room %s returned to vacant", ticket.RoomID))
	}
	return ticket, nil
}

// reevaluateRoom clears maintenance once no open ticket references the
// room. Reports whether the room actually changed.
func (c *Coordinator) reevaluateRoom(ctx context.Context, roomID string) (bool, error) {
	open, err := c.store.Tickets().ListOpenByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if len(open) > 0 {
		return false, nil
	}
	cleared := false
	if _, err := c.store.Rooms().Update(ctx, roomID, func(r *domain.Room) error {
		if r.Status != domain.RoomMaintenance {
			return nil
		}
		cleared = true
		return r.ClearMaintenance()
	}); err != nil {
		return false, err
	}
	return cleared, nil
}

// SetRoomStatus is the guarded direct edit. The only edge it accepts is
// maintenance to vacant with zero open tickets; rooms enter maintenance
// solely through ticket creation.
func (c *Coordinator) SetRoomStatus(ctx context.Context, roomID string, status domain.RoomStatus, actor string) (*domain.Room, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown room status " + string(status)}
	}
	room, err := c.store.Rooms().Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if status != domain.RoomVacant {
		return nil, &domain.InvalidTransitionError{
			Entity: "room",
			ID:     roomID,
			From:   string(room.Status),
			To:     string(status),
			Reason: "rooms change status only through the ticket lifecycle",
		}
	}

	open, err := c.store.Tickets().ListOpenByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, &domain.ConflictingStateError{
			Detail: fmt.Sprintf("room %s still has %d open ticket(s)", roomID, len(open)),
		}
	}

	room, err = c.store.Rooms().Update(ctx, roomID, func(r *domain.Room) error {
		return r.ClearMaintenance()
	})
	if err != nil {
		return nil, err
	}

	c.audit.Record(ctx, actor, domain.ActionRoomUpdate,
		fmt.Sprintf("room %s returned to vacant", roomID))
	return room, nil
}
