package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type StaffDirectory struct {
	store ports.Store
	audit *AuditRecorder
	nowFn func() time.Time
	newID func() string
}

var _ ports.StaffService = (*StaffDirectory)(nil)

func NewStaffDirectory(store ports.Store, audit *AuditRecorder) *StaffDirectory {
	return &StaffDirectory{
		store: store,
		audit: audit,
		nowFn: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *StaffDirectory) Create(ctx context.Context, loginID, name string, role domain.StaffRole, actor string) (*domain.Staff, error) {
	staff, err := domain.NewStaff(s.newID(), loginID, name, role, s.nowFn())
	if err != nil {
		return nil, err
	}
	if err := s.store.Staff().Create(ctx, staff); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, domain.ActionStaffCreate, name+" ("+string(role)+")")
	return staff, nil
}

func (s *StaffDirectory) Remove(ctx context.Context, staffID, actor string) error {
	staff, err := s.store.Staff().Get(ctx, staffID)
	if err != nil {
		return err
	}
	if err := s.store.Staff().Delete(ctx, staffID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, domain.ActionStaffDelete, staff.Name)
	return nil
}

func (s *StaffDirectory) List(ctx context.Context) ([]domain.Staff, error) {
	return s.store.Staff().List(ctx)
}
