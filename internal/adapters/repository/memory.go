package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// MemoryStore is the in-process document store. It backs unit tests and
// standalone deployments, and defines the reference semantics the Postgres
// adapter must match: per-document version counters, updates linearized
// under the store lock, change events published only for committed writes.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]domain.Room
	tickets  map[string]domain.Ticket
	requests map[string]domain.Request
	leave    map[string]domain.LeaveApplication
	laundry  map[string]domain.LaundryBatch
	stock    map[string]domain.StockItem
	staff    map[string]domain.Staff
	audit    []domain.AuditRecord
	versions map[string]int64
	sink     ports.ChangeSink
}

var _ ports.Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store. sink may be nil when no one
// watches for changes.
func NewMemoryStore(sink ports.ChangeSink) *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]domain.Room),
		tickets:  make(map[string]domain.Ticket),
		requests: make(map[string]domain.Request),
		leave:    make(map[string]domain.LeaveApplication),
		laundry:  make(map[string]domain.LaundryBatch),
		stock:    make(map[string]domain.StockItem),
		staff:    make(map[string]domain.Staff),
		versions: make(map[string]int64),
		sink:     sink,
	}
}

func (s *MemoryStore) Rooms() ports.RoomRepository       { return memoryRooms{s} }
func (s *MemoryStore) Tickets() ports.TicketRepository   { return memoryTickets{s} }
func (s *MemoryStore) Requests() ports.RequestRepository { return memoryRequests{s} }
func (s *MemoryStore) Leave() ports.LeaveRepository      { return memoryLeave{s} }
func (s *MemoryStore) Laundry() ports.LaundryRepository  { return memoryLaundry{s} }
func (s *MemoryStore) Stock() ports.StockRepository      { return memoryStock{s} }
func (s *MemoryStore) Staff() ports.StaffRepository      { return memoryStaff{s} }
func (s *MemoryStore) Audit() ports.AuditRepository      { return memoryAudit{s} }

// bump assigns the next version for a document. Caller holds the write lock.
func (s *MemoryStore) bump(collection, key string) int64 {
	vk := collection + "/" + key
	s.versions[vk]++
	return s.versions[vk]
}

// emit publishes a committed write. Called with the write lock held so
// event order matches commit order per document.
func (s *MemoryStore) emit(collection, key string, doc any, meta map[string]string, deleted bool) {
	if s.sink == nil {
		return
	}
	evt := ports.ChangeEvent{
		Collection: collection,
		Key:        key,
		Version:    s.bump(collection, key),
		Deleted:    deleted,
		Meta:       meta,
	}
	if !deleted {
		raw, err := json.Marshal(doc)
		if err != nil {
			panic(fmt.Sprintf("memory store: marshal %s/%s: %v", collection, key, err))
		}
		evt.Doc = raw
	}
	s.sink.Publish(evt)
}

// Snapshot returns the current state of one collection as change events,
// for seeding a fresh subscription.
func (s *MemoryStore) Snapshot(ctx context.Context, collection string) ([]ports.ChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []ports.ChangeEvent
	add := func(key string, doc any, meta map[string]string) {
		raw, err := json.Marshal(doc)
		if err != nil {
			panic(fmt.Sprintf("memory store: marshal %s/%s: %v", collection, key, err))
		}
		events = append(events, ports.ChangeEvent{
			Collection: collection,
			Key:        key,
			Version:    s.versions[collection+"/"+key],
			Doc:        raw,
			Meta:       meta,
		})
	}

	switch collection {
	case ports.CollectionRooms:
		for id, r := range s.rooms {
			add(id, r, roomMeta(&r))
		}
	case ports.CollectionTickets:
		for id, t := range s.tickets {
			add(id, t, ticketMeta(&t))
		}
	case ports.CollectionRequests:
		for id, r := range s.requests {
			add(id, r, requestMeta(&r))
		}
	case ports.CollectionLeave:
		for id, l := range s.leave {
			add(id, l, leaveMeta(&l))
		}
	case ports.CollectionLaundry:
		for id, b := range s.laundry {
			cp := cloneBatch(b)
			add(id, cp, laundryMeta(&cp))
		}
	case ports.CollectionStock:
		for id, i := range s.stock {
			add(id, i, stockMeta(&i))
		}
	case ports.CollectionStaff:
		for id, m := range s.staff {
			add(id, m, staffMeta(&m))
		}
	default:
		return nil, &domain.ValidationError{Field: "collection", Reason: "unknown collection " + collection}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Key < events[j].Key })
	return events, nil
}

// Meta fields are the equality-filterable attributes per collection.

func roomMeta(r *domain.Room) map[string]string {
	return map[string]string{"status": string(r.Status), "floor": strconv.Itoa(r.Floor)}
}

func ticketMeta(t *domain.Ticket) map[string]string {
	return map[string]string{"roomId": t.RoomID, "status": string(t.Status)}
}

func requestMeta(r *domain.Request) map[string]string {
	return map[string]string{"senderId": r.SenderID, "receiverId": r.ReceiverID, "status": string(r.Status)}
}

func leaveMeta(l *domain.LeaveApplication) map[string]string {
	return map[string]string{"userId": l.UserID, "status": string(l.Status)}
}

func laundryMeta(b *domain.LaundryBatch) map[string]string {
	return map[string]string{"sentBy": b.SentBy, "status": string(b.Status)}
}

func stockMeta(i *domain.StockItem) map[string]string {
	return map[string]string{"category": i.Category}
}

func staffMeta(m *domain.Staff) map[string]string {
	return map[string]string{"role": string(m.Role)}
}

func cloneBatch(b domain.LaundryBatch) domain.LaundryBatch {
	cp := b
	cp.Items = make(map[string]domain.LaundryItem, len(b.Items))
	for k, v := range b.Items {
		cp.Items[k] = v
	}
	return cp
}

// --- rooms ------------------------------------------------------------------

type memoryRooms struct{ s *MemoryStore }

func (r memoryRooms) Get(ctx context.Context, id string) (*domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "room", ID: id}
	}
	return &room, nil
}

func (r memoryRooms) Put(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rooms[room.ID] = *room
	r.s.emit(ports.CollectionRooms, room.ID, *room, roomMeta(room), false)
	return nil
}

func (r memoryRooms) Update(ctx context.Context, id string, mutate func(*domain.Room) error) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.rooms[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "room", ID: id}
	}
	if err := mutate(&current); err != nil {
		return nil, err
	}
	current.ID = id
	r.s.rooms[id] = current
	r.s.emit(ports.CollectionRooms, id, current, roomMeta(&current), false)
	return &current, nil
}

func (r memoryRooms) List(ctx context.Context) ([]domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Room, 0, len(r.s.rooms))
	for _, room := range r.s.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- tickets ----------------------------------------------------------------

type memoryTickets struct{ s *MemoryStore }

func (r memoryTickets) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "ticket", ID: id}
	}
	return &t, nil
}

func (r memoryTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tickets[ticket.ID]; exists {
		return fmt.Errorf("ticket %q already exists", ticket.ID)
	}
	r.s.tickets[ticket.ID] = *ticket
	r.s.emit(ports.CollectionTickets, ticket.ID, *ticket, ticketMeta(ticket), false)
	return nil
}

func (r memoryTickets) Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tickets[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "ticket", ID: id}
	}
	if err := mutate(&current); err != nil {
		return nil, err
	}
	current.ID = id
	r.s.tickets[id] = current
	r.s.emit(ports.CollectionTickets, id, current, ticketMeta(&current), false)
	return &current, nil
}

func (r memoryTickets) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return &domain.NotFoundError{Entity: "ticket", ID: id}
	}
	delete(r.s.tickets, id)
	r.s.emit(ports.CollectionTickets, id, nil, nil, true)
	return nil
}

func (r memoryTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, t := range r.s.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memoryTickets) ListOpenByRoom(ctx context.Context, roomID string) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if t.RoomID == roomID && t.Status == domain.TicketOpen {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- requests ---------------------------------------------------------------

type memoryRequests struct{ s *MemoryStore }

func (r memoryRequests) Get(ctx context.Context, id string) (*domain.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "request", ID: id}
	}
	return &req, nil
}

func (r memoryRequests) Create(ctx context.Context, request *domain.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.requests[request.ID]; exists {
		return fmt.Errorf("request %q already exists", request.ID)
	}
	r.s.requests[request.ID] = *request
	r.s.emit(ports.CollectionRequests, request.ID, *request, requestMeta(request), false)
	return nil
}

func (r memoryRequests) Update(ctx context.Context, id string, mutate func(*domain.Request) error) (*domain.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.requests[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "request", ID: id}
	}
	if err := mutate(&current); err != nil {
		return nil, err
	}
	current.ID = id
	r.s.requests[id] = current
	r.s.emit(ports.CollectionRequests, id, current, requestMeta(&current), false)
	return &current, nil
}

func (r memoryRequests) List(ctx context.Context) ([]domain.Request, error) {
	return r.listWhere(func(domain.Request) bool { return true })
}

func (r memoryRequests) ListBySender(ctx context.Context, senderID string) ([]domain.Request, error) {
	return r.listWhere(func(req domain.Request) bool { return req.SenderID == senderID })
}

func (r memoryRequests) ListByReceiver(ctx context.Context, receiverID string) ([]domain.Request, error) {
	return r.listWhere(func(req domain.Request) bool { return req.ReceiverID == receiverID })
}

func (r memoryRequests) listWhere(keep func(domain.Request) bool) ([]domain.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Request
	for _, req := range r.s.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- leave ------------------------------------------------------------------

type memoryLeave struct{ s *MemoryStore }

func (r memoryLeave) Get(ctx context.Context, id string) (*domain.LeaveApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.leave[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "leave application", ID: id}
	}
	return &l, nil
}

func (r memoryLeave) Create(ctx context.Context, leave *domain.LeaveApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.leave[leave.ID]; exists {
		return fmt.Errorf("leave application %q already exists", leave.ID)
	}
	r.s.leave[leave.ID] = *leave
	r.s.emit(ports.CollectionLeave, leave.ID, *leave, leaveMeta(leave), false)
	return nil
}

func (r memoryLeave) Update(ctx context.Context, id string, mutate func(*domain.LeaveApplication) error) (*domain.LeaveApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.leave[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "leave application", ID: id}
	}
	if err := mutate(&current); err != nil {
		return nil, err
	}
	current.ID = id
	r.s.leave[id] = current
	r.s.emit(ports.CollectionLeave, id, current, leaveMeta(&current), false)
	return &current, nil
}

func (r memoryLeave) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leave[id]; !ok {
		return &domain.NotFoundError{Entity: "leave application", ID: id}
	}
	delete(r.s.leave, id)
	r.s.emit(ports.CollectionLeave, id, nil, nil, true)
	return nil
}

func (r memoryLeave) List(ctx context.Context) ([]domain.LeaveApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.LeaveApplication, 0, len(r.s.leave))
	for _, l := range r.s.leave {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- laundry ----------------------------------------------------------------

type memoryLaundry struct{ s *MemoryStore }

func (r memoryLaundry) Get(ctx context.Context, id string) (*domain.LaundryBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.laundry[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "laundry batch", ID: id}
	}
	cp := cloneBatch(b)
	return &cp, nil
}

func (r memoryLaundry) Create(ctx context.Context, batch *domain.LaundryBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.laundry[batch.ID]; exists {
		return fmt.Errorf("laundry batch %q already exists", batch.ID)
	}
	cp := cloneBatch(*batch)
	r.s.laundry[batch.ID] = cp
	r.s.emit(ports.CollectionLaundry, batch.ID, cp, laundryMeta(&cp), false)
	return nil
}

func (r memoryLaundry) Update(ctx context.Context, id string, mutate func(*domain.LaundryBatch) error) (*domain.LaundryBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.laundry[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "laundry batch", ID: id}
	}
	current := cloneBatch(stored)
	if err := mutate(&current); err != nil {
		return nil, err
	}
	current.ID = id
	r.s.laundry[id] = cloneBatch(current)
	r.s.emit(ports.CollectionLaundry, id, current, laundryMeta(&current), false)
	return &current, nil
}

func (r memoryLaundry) List(ctx context.Context) ([]domain.LaundryBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.LaundryBatch, 0, len(r.s.laundry))
	for _, b := range r.s.laundry {
		out = append(out, cloneBatch(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- stock ------------------------------------------------------------------

type memoryStock struct{ s *MemoryStore }

func (r memoryStock) Get(ctx context.Context, id string) (*domain.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.stock[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "stock item", ID: id}
	}
	return &item, nil
}

func (r memoryStock) Put(ctx context.Context, item *domain.StockItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stock[item.ID] = *item
	r.s.emit(ports.CollectionStock, item.ID, *item, stockMeta(item), false)
	return nil
}

func (r memoryStock) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stock[id]; !ok {
		return &domain.NotFoundError{Entity: "stock item", ID: id}
	}
	delete(r.s.stock, id)
	r.s.emit(ports.CollectionStock, id, nil, nil, true)
	return nil
}

func (r memoryStock) List(ctx context.Context) ([]domain.StockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.StockItem, 0, len(r.s.stock))
	for _, item := range r.s.stock {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// --- staff ------------------------------------------------------------------

type memoryStaff struct{ s *MemoryStore }

func (r memoryStaff) Get(ctx context.Context, id string) (*domain.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.staff[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "staff", ID: id}
	}
	return &m, nil
}

func (r memoryStaff) Create(ctx context.Context, staff *domain.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.staff[staff.ID]; exists {
		return fmt.Errorf("staff %q already exists", staff.ID)
	}
	r.s.staff[staff.ID] = *staff
	r.s.emit(ports.CollectionStaff, staff.ID, *staff, staffMeta(staff), false)
	return nil
}

func (r memoryStaff) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[id]; !ok {
		return &domain.NotFoundError{Entity: "staff", ID: id}
	}
	delete(r.s.staff, id)
	r.s.emit(ports.CollectionStaff, id, nil, nil, true)
	return nil
}

func (r memoryStaff) List(ctx context.Context) ([]domain.Staff, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Staff, 0, len(r.s.staff))
	for _, m := range r.s.staff {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- audit ------------------------------------------------------------------

type memoryAudit struct{ s *MemoryStore }

func (r memoryAudit) Append(ctx context.Context, record *domain.AuditRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *record)
	return nil
}

func (r memoryAudit) List(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.AuditRecord
	for _, rec := range r.s.audit {
		if filter.Actor != "" && rec.Actor != filter.Actor {
			continue
		}
		if filter.Action != "" && rec.Action != filter.Action {
			continue
		}
		if !filter.Since.IsZero() && rec.Timestamp.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && rec.Timestamp.After(filter.Until) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
