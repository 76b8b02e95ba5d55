package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type Leave struct {
	store ports.Store
	audit *AuditRecorder
	nowFn func() time.Time
	newID func() string
}

var _ ports.LeaveService = (*Leave)(nil)

func NewLeave(store ports.Store, audit *AuditRecorder) *Leave {
	return &Leave{
		store: store,
		audit: audit,
		nowFn: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (s *Leave) Apply(ctx context.Context, userID, leaveType, remarks string) (*domain.LeaveApplication, error) {
	applicant, err := s.store.Staff().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	leave, err := domain.NewLeaveApplication(s.newID(), applicant.ID, leaveType, remarks, s.nowFn())
	if err != nil {
		return nil, err
	}
	if err := s.store.Leave().Create(ctx, leave); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, applicant.Name, domain.ActionLeaveApply, leaveType)
	return leave, nil
}

// Decide records the first administrator decision; any later decision loses
// with a stale-state rejection. Admin role is enforced at the transport
// layer, the actor here is the decider's display name for the audit trail.
func (s *Leave) Decide(ctx context.Context, leaveID, actorID string, decision domain.LeaveDecision) (*domain.LeaveApplication, error) {
	decider, err := s.store.Staff().Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	leave, err := s.store.Leave().Update(ctx, leaveID, func(l *domain.LeaveApplication) error {
		return l.Decide(decider.Name, decision, s.nowFn())
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, decider.Name, domain.ActionLeaveDecide,
		fmt.Sprintf("%s leave for %s %s", leave.Type, leave.UserID, decision))
	return leave, nil
}

// Remove is the explicit administrative deletion; nothing references leave
// applications transactionally, so a plain delete is safe.
func (s *Leave) Remove(ctx context.Context, leaveID, actor string) error {
	leave, err := s.store.Leave().Get(ctx, leaveID)
	if err != nil {
		return err
	}
	if err := s.store.Leave().Delete(ctx, leaveID); err != nil {
		return err
	}

	s.audit.Record(ctx, actor, domain.ActionLeaveDelete,
		fmt.Sprintf("%s leave application for %s removed", leave.Type, leave.UserID))
	return nil
}
