package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// Stock is a manually reconciled ledger: upserts are last-write-wins and
// laundry batches never touch it.
type Stock struct {
	store ports.Store
	audit *AuditRecorder
	newID func() string
}

var _ ports.StockService = (*Stock)(nil)

func NewStock(store ports.Store, audit *AuditRecorder) *Stock {
	return &Stock{
		store: store,
		audit: audit,
		newID: uuid.NewString,
	}
}

func (s *Stock) Upsert(ctx context.Context, item *domain.StockItem, actor string) (*domain.StockItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = s.newID()
	}
	if err := s.store.Stock().Put(ctx, item); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, domain.ActionStockUpdate,
		fmt.Sprintf("%s set to %d", item.Name, item.Quantity))
	return item, nil
}

func (s *Stock) Remove(ctx context.Context, itemID, actor string) error {
	item, err := s.store.Stock().Get(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.store.Stock().Delete(ctx, itemID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, domain.ActionStockUpdate, item.Name+" removed")
	return nil
}

func (s *Stock) List(ctx context.Context) ([]domain.StockItem, error) {
	return s.store.Stock().List(ctx)
}
