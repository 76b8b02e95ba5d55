package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/repository"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

func testClock() func() time.Time {
	t := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newCoordinatorEnv(t *testing.T) (*Coordinator, ports.Store) {
	t.Helper()
	store := repository.NewMemoryStore(nil)
	coord := NewCoordinator(store, NewAuditRecorder(store.Audit()))
	coord.nowFn = testClock()
	coord.newID = sequentialIDs("ticket")
	return coord, store
}

func seedRoom(t *testing.T, store ports.Store, id string, status domain.RoomStatus) {
	t.Helper()
	err := store.Rooms().Put(context.Background(), &domain.Room{
		ID: id, Type: "DLXR", Floor: 1, Status: status,
	})
	if err != nil {
		t.Fatalf("seed room %s: %v", id, err)
	}
}

func auditActions(t *testing.T, store ports.Store) []domain.AuditAction {
	t.Helper()
	records, err := store.Audit().List(context.Background(), ports.AuditFilter{})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	actions := make([]domain.AuditAction, len(records))
	for i, rec := range records {
		actions[i] = rec.Action
	}
	return actions
}

// A reported issue takes the room to maintenance; resolving the last open
// ticket returns it to vacant.
func TestTicketLifecycleRoundTrip(t *testing.T) {
	ctx := context.Background()
	coord, store := newCoordinatorEnv(t)
	seedRoom(t, store, "101", domain.RoomVacant)

	ticket, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketOpen {
		t.Errorf("ticket status = %s, want open", ticket.Status)
	}

	room, _ := store.Rooms().Get(ctx, "101")
	if room.Status != domain.RoomMaintenance {
		t.Fatalf("room status after report = %s, want maintenance", room.Status)
	}

	resolved, err := coord.ResolveTicket(ctx, ticket.ID, "Ravi")
	if err != nil {
		t.Fatalf("ResolveTicket: %v", err)
	}
	if resolved.Status != domain.TicketResolved || resolved.ResolvedBy != "Ravi" {
		t.Errorf("resolution not recorded: %+v", resolved)
	}

	room, _ = store.Rooms().Get(ctx, "101")
	if room.Status != domain.RoomVacant {
		t.Fatalf("room status after resolve = %s, want vacant", room.Status)
	}

	want := []domain.AuditAction{
		domain.ActionTicketCreate,
		domain.ActionRoomUpdate,
		domain.ActionTicketResolve,
		domain.ActionRoomUpdate,
	}
	got := auditActions(t, store)
	if len(got) != len(want) {
		t.Fatalf("audit trail = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit trail = %v, want %v", got, want)
		}
	}
}

// The room stays in maintenance while any ticket referencing it is open.
func TestRoomStaysInMaintenanceUntilLastTicketResolved(t *testing.T) {
	ctx := context.Background()
	coord, store := newCoordinatorEnv(t)
	seedRoom(t, store, "204", domain.RoomVacant)

	first, err := coord.CreateTicket(ctx, "204", "leaky tap", "Guest")
	if err != nil {
		t.Fatalf("first ticket: %v", err)
	}
	second, err := coord.CreateTicket(ctx, "204", "broken lamp", "Maya")
	if err != nil {
		t.Fatalf("second ticket: %v", err)
	}

	if _, err := coord.ResolveTicket(ctx, first.ID, "Ravi"); err != nil {
		t.Fatalf("resolve first: %v", err)
	}
	room, _ := store.Rooms().Get(ctx, "204")
	if room.Status != domain.RoomMaintenance {
		t.Fatalf("room released with a ticket still open")
	}

	if _, err := coord.ResolveTicket(ctx, second.ID, "Ravi"); err != nil {
		t.Fatalf("resolve second: %v", err)
	}
	room, _ = store.Rooms().Get(ctx, "204")
	if room.Status != domain.RoomVacant {
		t.Fatalf("room status = %s, want vacant after last resolve", room.Status)
	}
}

func TestCreateTicketUnknownRoom(t *testing.T) {
	coord, _ := newCoordinatorEnv(t)
	_, err := coord.CreateTicket(context.Background(), "999", "ghost room", "Guest")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveTicketTwice(t *testing.T) {
	ctx := context.Background()
	coord, store := newCoordinatorEnv(t)
	seedRoom(t, store, "101", domain.RoomVacant)

	ticket, _ := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	if _, err := coord.ResolveTicket(ctx, ticket.ID, "Ravi"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	_, err := coord.ResolveTicket(ctx, ticket.ID, "Maya")
	var transition *domain.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestSetRoomStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("only_vacant_is_reachable_directly", func(t *testing.T) {
		coord, store := newCoordinatorEnv(t)
		seedRoom(t, store, "101", domain.RoomVacant)

		_, err := coord.SetRoomStatus(ctx, "101", domain.RoomMaintenance, "admin-1")
		var transition *domain.InvalidTransitionError
		if !errors.As(err, &transition) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("open_tickets_block_release", func(t *testing.T) {
		coord, store := newCoordinatorEnv(t)
		seedRoom(t, store, "101", domain.RoomVacant)
		if _, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest"); err != nil {
			t.Fatalf("CreateTicket: %v", err)
		}

		_, err := coord.SetRoomStatus(ctx, "101", domain.RoomVacant, "admin-1")
		var conflict *domain.ConflictingStateError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictingStateError, got %v", err)
		}
	})

	t.Run("maintenance_releases_when_clean", func(t *testing.T) {
		coord, store := newCoordinatorEnv(t)
		seedRoom(t, store, "101", domain.RoomMaintenance)

		room, err := coord.SetRoomStatus(ctx, "101", domain.RoomVacant, "admin-1")
		if err != nil {
			t.Fatalf("SetRoomStatus: %v", err)
		}
		if room.Status != domain.RoomVacant {
			t.Errorf("status = %s, want vacant", room.Status)
		}
	})

	t.Run("unknown_status_rejected", func(t *testing.T) {
		coord, store := newCoordinatorEnv(t)
		seedRoom(t, store, "101", domain.RoomVacant)

		_, err := coord.SetRoomStatus(ctx, "101", "renovation", "admin-1")
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

// --- partial failure plumbing ----------------------------------------------

var errInjected = errors.New("injected storage failure")

// flakyStore wraps the memory store and fails selected operations, to
// exercise the compensation paths.
type flakyStore struct {
	ports.Store
	roomUpdateErr   error
	ticketDeleteErr error

	ticketUpdateCalls    int
	ticketUpdateFailFrom int // fail Update calls numbered >= this (1-based); 0 disables
}

func (f *flakyStore) Rooms() ports.RoomRepository {
	return flakyRooms{f.Store.Rooms(), f}
}

func (f *flakyStore) Tickets() ports.TicketRepository {
	return flakyTickets{f.Store.Tickets(), f}
}

type flakyRooms struct {
	ports.RoomRepository
	f *flakyStore
}

func (r flakyRooms) Update(ctx context.Context, id string, mutate func(*domain.Room) error) (*domain.Room, error) {
	if r.f.roomUpdateErr != nil {
		return nil, r.f.roomUpdateErr
	}
	return r.RoomRepository.Update(ctx, id, mutate)
}

type flakyTickets struct {
	ports.TicketRepository
	f *flakyStore
}

func (r flakyTickets) Delete(ctx context.Context, id string) error {
	if r.f.ticketDeleteErr != nil {
		return r.f.ticketDeleteErr
	}
	return r.TicketRepository.Delete(ctx, id)
}

func (r flakyTickets) Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	r.f.ticketUpdateCalls++
	if r.f.ticketUpdateFailFrom > 0 && r.f.ticketUpdateCalls >= r.f.ticketUpdateFailFrom {
		return nil, errInjected
	}
	return r.TicketRepository.Update(ctx, id, mutate)
}

func TestCreateTicketCompensatesOnRoomFailure(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore(nil)
	flaky := &flakyStore{Store: mem, roomUpdateErr: errInjected}
	coord := NewCoordinator(flaky, NewAuditRecorder(mem.Audit()))
	coord.nowFn = testClock()
	coord.newID = sequentialIDs("ticket")
	seedRoom(t, mem, "101", domain.RoomVacant)

	_, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected the injected error, got %v", err)
	}

	// The compensating delete removed the orphan ticket.
	tickets, _ := mem.Tickets().List(ctx)
	if len(tickets) != 0 {
		t.Errorf("compensating delete left %d ticket(s)", len(tickets))
	}
	if actions := auditActions(t, mem); len(actions) != 0 {
		t.Errorf("failed create produced audit records: %v", actions)
	}
}

func TestCreateTicketPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore(nil)
	flaky := &flakyStore{Store: mem, roomUpdateErr: errInjected, ticketDeleteErr: errInjected}
	coord := NewCoordinator(flaky, NewAuditRecorder(mem.Audit()))
	coord.nowFn = testClock()
	coord.newID = sequentialIDs("ticket")
	seedRoom(t, mem, "101", domain.RoomVacant)

	_, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	var partial *domain.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if len(partial.Entities) != 2 {
		t.Errorf("partial failure names %v, want ticket and room", partial.Entities)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("cause not preserved through Unwrap")
	}
}

func TestResolveTicketCompensatesOnRoomFailure(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore(nil)
	flaky := &flakyStore{Store: mem}
	coord := NewCoordinator(flaky, NewAuditRecorder(mem.Audit()))
	coord.nowFn = testClock()
	coord.newID = sequentialIDs("ticket")
	seedRoom(t, mem, "101", domain.RoomVacant)

	ticket, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	flaky.roomUpdateErr = errInjected
	_, err = coord.ResolveTicket(ctx, ticket.ID, "Ravi")
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected the injected error, got %v", err)
	}

	// The compensating reopen restored the ticket.
	stored, _ := mem.Tickets().Get(ctx, ticket.ID)
	if stored.Status != domain.TicketOpen {
		t.Errorf("ticket status = %s, want open after compensation", stored.Status)
	}
}

func TestResolveTicketPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore(nil)
	flaky := &flakyStore{Store: mem}
	coord := NewCoordinator(flaky, NewAuditRecorder(mem.Audit()))
	coord.nowFn = testClock()
	coord.newID = sequentialIDs("ticket")
	seedRoom(t, mem, "101", domain.RoomVacant)

	ticket, err := coord.CreateTicket(ctx, "101", "AC not cooling", "Guest")
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// The resolve itself succeeds, the room update fails, and so does the
	// compensating reopen.
	flaky.roomUpdateErr = errInjected
	flaky.ticketUpdateFailFrom = flaky.ticketUpdateCalls + 2

	_, err = coord.ResolveTicket(ctx, ticket.ID, "Ravi")
	var partial *domain.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
}
