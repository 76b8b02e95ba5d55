package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type Laundry struct {
	store ports.Store
	audit *AuditRecorder
	nowFn func() time.Time
	newID func() string
}

var _ ports.LaundryService = (*Laundry)(nil)

func NewLaundry(store ports.Store, audit *AuditRecorder) *Laundry {
	return &Laundry{
		store: store,
		audit: audit,
		nowFn: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Laundry) SendBatch(ctx context.Context, sentBy string, items map[string]int) (*domain.LaundryBatch, error) {
	batch, err := domain.NewLaundryBatch(s.newID(), sentBy, items, s.nowFn())
	if err != nil {
		return nil, err
	}
	if err := s.store.Laundry().Create(ctx, batch); err != nil {
		return nil, err
	}

	total := 0
	for _, item := range batch.Items {
		total += item.SentQty
	}
	s.audit.Record(ctx, sentBy, domain.ActionLaundrySent,
		fmt.Sprintf("%d item(s), %d piece(s) sent", len(batch.Items), total))
	return batch, nil
}

// AdjudicateItem marks one line of a pending batch. Item verdicts are
// working state of the verification, not transitions of the batch, so they
// carry no audit record of their own; the finalize record captures the
// outcome.
func (s *Laundry) AdjudicateItem(ctx context.Context, batchID, itemName string, verdict domain.ItemVerdict, remark, actor string) (*domain.LaundryBatch, error) {
	return s.store.Laundry().Update(ctx, batchID, func(b *domain.LaundryBatch) error {
		return b.Adjudicate(itemName, verdict, remark)
	})
}

// FinalizeBatch submits the verification. An override of unadjudicated
// items is recorded in the audit details so a partially verified batch is
// distinguishable from a fully verified one later.
func (s *Laundry) FinalizeBatch(ctx context.Context, batchID, receivedBy string, overrideUnadjudicated bool) (*domain.LaundryBatch, error) {
	var unverified []string
	batch, err := s.store.Laundry().Update(ctx, batchID, func(b *domain.LaundryBatch) error {
		unverified = b.UnadjudicatedItems()
		return b.Finalize(receivedBy, overrideUnadjudicated, s.nowFn())
	})
	if err != nil {
		return nil, err
	}

	details := "all items verified"
	if len(unverified) > 0 {
		details = "unverified override for: " + strings.Join(unverified, ", ")
	}
	s.audit.Record(ctx, receivedBy, domain.ActionLaundryReceived, details)
	return batch, nil
}
