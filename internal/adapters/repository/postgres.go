package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

// OutboxChannel is the NOTIFY channel the audit relay listens on. Each
// notification carries the outbox event id.
const OutboxChannel = "outbox_channel"

// AuditEventType tags audit rows in the outbox.
const AuditEventType = "audit.recorded"

// PostgresStore keeps one JSONB row per document with a version column.
// Updates take a row lock so the mutator always runs against the current
// committed version; that is the whole of the store's linearization
// guarantee, and it is per document only.
type PostgresStore struct {
	db   *sql.DB
	sink ports.ChangeSink
}

var _ ports.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, sink ports.ChangeSink) *PostgresStore {
	return &PostgresStore{db: db, sink: sink}
}

// EnsureSchema applies the idempotent schema.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

func (s *PostgresStore) Rooms() ports.RoomRepository       { return pgRooms{s} }
func (s *PostgresStore) Tickets() ports.TicketRepository   { return pgTickets{s} }
func (s *PostgresStore) Requests() ports.RequestRepository { return pgRequests{s} }
func (s *PostgresStore) Leave() ports.LeaveRepository      { return pgLeave{s} }
func (s *PostgresStore) Laundry() ports.LaundryRepository  { return pgLaundry{s} }
func (s *PostgresStore) Stock() ports.StockRepository      { return pgStock{s} }
func (s *PostgresStore) Staff() ports.StaffRepository      { return pgStaff{s} }
func (s *PostgresStore) Audit() ports.AuditRepository      { return pgAudit{s} }

func (s *PostgresStore) publish(collection, key string, version int64, raw []byte, meta map[string]string, deleted bool) {
	if s.sink == nil {
		return
	}
	s.sink.Publish(ports.ChangeEvent{
		Collection: collection,
		Key:        key,
		Version:    version,
		Deleted:    deleted,
		Doc:        raw,
		Meta:       meta,
	})
}

// --- generic document helpers ----------------------------------------------

func getDoc[T any](ctx context.Context, s *PostgresStore, collection, entity, key string) (*T, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: entity, ID: key}
	}
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", entity, key, err)
	}
	return out, nil
}

func putDoc[T any](ctx context.Context, s *PostgresStore, collection, key string, doc *T, meta map[string]string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var version int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO documents (collection, key, version, doc, updated_at)
		VALUES ($1, $2, 1, $3, now())
		ON CONFLICT (collection, key)
		DO UPDATE SET doc = EXCLUDED.doc, version = documents.version + 1, updated_at = now()
		RETURNING version`,
		collection, key, raw,
	).Scan(&version)
	if err != nil {
		return err
	}
	s.publish(collection, key, version, raw, meta, false)
	return nil
}

func createDoc[T any](ctx context.Context, s *PostgresStore, collection, key string, doc *T, meta map[string]string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, version, doc, updated_at)
		VALUES ($1, $2, 1, $3, now())`,
		collection, key, raw,
	)
	if err != nil {
		return err
	}
	s.publish(collection, key, 1, raw, meta, false)
	return nil
}

func updateDoc[T any](
	ctx context.Context,
	s *PostgresStore,
	collection, entity, key string,
	mutate func(*T) error,
	metaFn func(*T) map[string]string,
) (*T, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var raw []byte
	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT doc, version FROM documents WHERE collection = $1 AND key = $2 FOR UPDATE`,
		collection, key,
	).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: entity, ID: key}
	}
	if err != nil {
		return nil, err
	}

	current := new(T)
	if err := json.Unmarshal(raw, current); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", entity, key, err)
	}
	if err := mutate(current); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET doc = $3, version = version + 1, updated_at = now()
		 WHERE collection = $1 AND key = $2`,
		collection, key, updated,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.publish(collection, key, version+1, updated, metaFn(current), false)
	return current, nil
}

func deleteDoc(ctx context.Context, s *PostgresStore, collection, entity, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM documents WHERE collection = $1 AND key = $2 FOR UPDATE`,
		collection, key,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: entity, ID: key}
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`,
		collection, key,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publish(collection, key, version+1, nil, nil, true)
	return nil
}

// listDocs runs a doc-scoped query. The where clause may reference $2..$n
// for the supplied args; $1 is always the collection.
func listDocs[T any](ctx context.Context, s *PostgresStore, collection, where, order string, args ...any) ([]T, error) {
	query := `SELECT doc FROM documents WHERE collection = $1` + where + order
	rows, err := s.db.QueryContext(ctx, query, append([]any{collection}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func snapshotDocs[T any](ctx context.Context, s *PostgresStore, collection string, metaFn func(*T) map[string]string) ([]ports.ChangeEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, version, doc FROM documents WHERE collection = $1 ORDER BY key`,
		collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ports.ChangeEvent
	for rows.Next() {
		var key string
		var version int64
		var raw []byte
		if err := rows.Scan(&key, &version, &raw); err != nil {
			return nil, err
		}
		doc := new(T)
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, err
		}
		events = append(events, ports.ChangeEvent{
			Collection: collection,
			Key:        key,
			Version:    version,
			Doc:        raw,
			Meta:       metaFn(doc),
		})
	}
	return events, rows.Err()
}

// Snapshot implements ports.Store.
func (s *PostgresStore) Snapshot(ctx context.Context, collection string) ([]ports.ChangeEvent, error) {
	switch collection {
	case ports.CollectionRooms:
		return snapshotDocs(ctx, s, collection, roomMeta)
	case ports.CollectionTickets:
		return snapshotDocs(ctx, s, collection, ticketMeta)
	case ports.CollectionRequests:
		return snapshotDocs(ctx, s, collection, requestMeta)
	case ports.CollectionLeave:
		return snapshotDocs(ctx, s, collection, leaveMeta)
	case ports.CollectionLaundry:
		return snapshotDocs(ctx, s, collection, laundryMeta)
	case ports.CollectionStock:
		return snapshotDocs(ctx, s, collection, stockMeta)
	case ports.CollectionStaff:
		return snapshotDocs(ctx, s, collection, staffMeta)
	}
	return nil, &domain.ValidationError{Field: "collection", Reason: "unknown collection " + collection}
}

// --- repositories -----------------------------------------------------------

type pgRooms struct{ s *PostgresStore }

func (r pgRooms) Get(ctx context.Context, id string) (*domain.Room, error) {
	return getDoc[domain.Room](ctx, r.s, ports.CollectionRooms, "room", id)
}

func (r pgRooms) Put(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	return putDoc(ctx, r.s, ports.CollectionRooms, room.ID, room, roomMeta(room))
}

func (r pgRooms) Update(ctx context.Context, id string, mutate func(*domain.Room) error) (*domain.Room, error) {
	return updateDoc(ctx, r.s, ports.CollectionRooms, "room", id, mutate, roomMeta)
}

func (r pgRooms) List(ctx context.Context) ([]domain.Room, error) {
	return listDocs[domain.Room](ctx, r.s, ports.CollectionRooms, "", " ORDER BY key")
}

type pgTickets struct{ s *PostgresStore }

func (r pgTickets) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	return getDoc[domain.Ticket](ctx, r.s, ports.CollectionTickets, "ticket", id)
}

func (r pgTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	return createDoc(ctx, r.s, ports.CollectionTickets, ticket.ID, ticket, ticketMeta(ticket))
}

func (r pgTickets) Update(ctx context.Context, id string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	return updateDoc(ctx, r.s, ports.CollectionTickets, "ticket", id, mutate, ticketMeta)
}

func (r pgTickets) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.s, ports.CollectionTickets, "ticket", id)
}

func (r pgTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	return listDocs[domain.Ticket](ctx, r.s, ports.CollectionTickets, "", " ORDER BY doc->>'createdAt' DESC")
}

func (r pgTickets) ListOpenByRoom(ctx context.Context, roomID string) ([]domain.Ticket, error) {
	return listDocs[domain.Ticket](ctx, r.s, ports.CollectionTickets,
		" AND doc->>'roomId' = $2 AND doc->>'status' = 'open'",
		" ORDER BY doc->>'createdAt'", roomID)
}

type pgRequests struct{ s *PostgresStore }

func (r pgRequests) Get(ctx context.Context, id string) (*domain.Request, error) {
	return getDoc[domain.Request](ctx, r.s, ports.CollectionRequests, "request", id)
}

func (r pgRequests) Create(ctx context.Context, request *domain.Request) error {
	return createDoc(ctx, r.s, ports.CollectionRequests, request.ID, request, requestMeta(request))
}

func (r pgRequests) Update(ctx context.Context, id string, mutate func(*domain.Request) error) (*domain.Request, error) {
	return updateDoc(ctx, r.s, ports.CollectionRequests, "request", id, mutate, requestMeta)
}

func (r pgRequests) List(ctx context.Context) ([]domain.Request, error) {
	return listDocs[domain.Request](ctx, r.s, ports.CollectionRequests, "", " ORDER BY doc->>'createdAt' DESC")
}

func (r pgRequests) ListBySender(ctx context.Context, senderID string) ([]domain.Request, error) {
	return listDocs[domain.Request](ctx, r.s, ports.CollectionRequests,
		" AND doc->>'senderId' = $2", " ORDER BY doc->>'createdAt' DESC", senderID)
}

func (r pgRequests) ListByReceiver(ctx context.Context, receiverID string) ([]domain.Request, error) {
	return listDocs[domain.Request](ctx, r.s, ports.CollectionRequests,
		" AND doc->>'receiverId' = $2", " ORDER BY doc->>'createdAt' DESC", receiverID)
}

type pgLeave struct{ s *PostgresStore }

func (r pgLeave) Get(ctx context.Context, id string) (*domain.LeaveApplication, error) {
	return getDoc[domain.LeaveApplication](ctx, r.s, ports.CollectionLeave, "leave application", id)
}

func (r pgLeave) Create(ctx context.Context, leave *domain.LeaveApplication) error {
	return createDoc(ctx, r.s, ports.CollectionLeave, leave.ID, leave, leaveMeta(leave))
}

func (r pgLeave) Update(ctx context.Context, id string, mutate func(*domain.LeaveApplication) error) (*domain.LeaveApplication, error) {
	return updateDoc(ctx, r.s, ports.CollectionLeave, "leave application", id, mutate, leaveMeta)
}

func (r pgLeave) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.s, ports.CollectionLeave, "leave application", id)
}

func (r pgLeave) List(ctx context.Context) ([]domain.LeaveApplication, error) {
	return listDocs[domain.LeaveApplication](ctx, r.s, ports.CollectionLeave, "", " ORDER BY doc->>'createdAt' DESC")
}

type pgLaundry struct{ s *PostgresStore }

func (r pgLaundry) Get(ctx context.Context, id string) (*domain.LaundryBatch, error) {
	return getDoc[domain.LaundryBatch](ctx, r.s, ports.CollectionLaundry, "laundry batch", id)
}

func (r pgLaundry) Create(ctx context.Context, batch *domain.LaundryBatch) error {
	return createDoc(ctx, r.s, ports.CollectionLaundry, batch.ID, batch, laundryMeta(batch))
}

func (r pgLaundry) Update(ctx context.Context, id string, mutate func(*domain.LaundryBatch) error) (*domain.LaundryBatch, error) {
	return updateDoc(ctx, r.s, ports.CollectionLaundry, "laundry batch", id, mutate, laundryMeta)
}

func (r pgLaundry) List(ctx context.Context) ([]domain.LaundryBatch, error) {
	return listDocs[domain.LaundryBatch](ctx, r.s, ports.CollectionLaundry, "", " ORDER BY doc->>'createdAt' DESC")
}

type pgStock struct{ s *PostgresStore }

func (r pgStock) Get(ctx context.Context, id string) (*domain.StockItem, error) {
	return getDoc[domain.StockItem](ctx, r.s, ports.CollectionStock, "stock item", id)
}

func (r pgStock) Put(ctx context.Context, item *domain.StockItem) error {
	return putDoc(ctx, r.s, ports.CollectionStock, item.ID, item, stockMeta(item))
}

func (r pgStock) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.s, ports.CollectionStock, "stock item", id)
}

func (r pgStock) List(ctx context.Context) ([]domain.StockItem, error) {
	return listDocs[domain.StockItem](ctx, r.s, ports.CollectionStock, "",
		" ORDER BY (doc->>'order')::int, doc->>'name'")
}

type pgStaff struct{ s *PostgresStore }

func (r pgStaff) Get(ctx context.Context, id string) (*domain.Staff, error) {
	return getDoc[domain.Staff](ctx, r.s, ports.CollectionStaff, "staff", id)
}

func (r pgStaff) Create(ctx context.Context, staff *domain.Staff) error {
	return createDoc(ctx, r.s, ports.CollectionStaff, staff.ID, staff, staffMeta(staff))
}

func (r pgStaff) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, r.s, ports.CollectionStaff, "staff", id)
}

func (r pgStaff) List(ctx context.Context) ([]domain.Staff, error) {
	return listDocs[domain.Staff](ctx, r.s, ports.CollectionStaff, "", " ORDER BY doc->>'name'")
}

// --- audit ------------------------------------------------------------------

type pgAudit struct{ s *PostgresStore }

// Append writes the audit record and its outbox event in one transaction
// and notifies the relay. The relay owns delivery to the broker; a crash
// between commit and notify is covered by the relay's periodic sweep.
func (r pgAudit) Append(ctx context.Context, record *domain.AuditRecord) error {
	payload, err := json.Marshal(ports.AuditEvent{
		RecordID:  record.ID,
		Actor:     record.Actor,
		Action:    string(record.Action),
		Details:   record.Details,
		Timestamp: record.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_records (id, actor, action_type, details, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.Actor, string(record.Action), record.Details, record.Timestamp,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)`,
		record.ID, AuditEventType, payload,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, OutboxChannel, record.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r pgAudit) List(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditRecord, error) {
	query := `SELECT id, actor, action_type, details, created_at FROM audit_records WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Actor != "" {
		query += ` AND actor = ` + arg(filter.Actor)
	}
	if filter.Action != "" {
		query += ` AND action_type = ` + arg(string(filter.Action))
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ` + arg(filter.Since)
	}
	if !filter.Until.IsZero() {
		query += ` AND created_at <= ` + arg(filter.Until)
	}
	query += ` ORDER BY created_at`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var action string
		if err := rows.Scan(&rec.ID, &rec.Actor, &action, &rec.Details, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.Action = domain.AuditAction(action)
		out = append(out, rec)
	}
	return out, rows.Err()
}
