package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// AuditRecorder appends one record per accepted state transition. Audit is
// observability, not a correctness dependency: a failed append is logged
// and the causing command still succeeds.
type AuditRecorder struct {
	repo  ports.AuditRepository
	nowFn func() time.Time
}

func NewAuditRecorder(repo ports.AuditRepository) *AuditRecorder {
	return &AuditRecorder{
		repo:  repo,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Record writes an audit entry after its causing transition has committed.
// An unknown action type is a programming error and panics.
func (a *AuditRecorder) Record(ctx context.Context, actor string, action domain.AuditAction, details string) {
	if !action.Known() {
		panic(fmt.Sprintf("audit: unknown action type %q", action))
	}
	record := &domain.AuditRecord{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		Timestamp: a.nowFn(),
	}
	if err := a.repo.Append(ctx, record); err != nil {
		log.Printf("audit: failed to append %s record for %s: %v", action, actor, err)
	}
}

// AuditExport serves the read-only, time-ordered export feed.
type AuditExport struct {
	repo ports.AuditRepository
}

var _ ports.AuditService = (*AuditExport)(nil)

func NewAuditExport(repo ports.AuditRepository) *AuditExport {
	return &AuditExport{repo: repo}
}

func (a *AuditExport) Export(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditRecord, error) {
	if filter.Action != "" && !filter.Action.Known() {
		return nil, &domain.ValidationError{Field: "actionType", Reason: "unknown action type " + string(filter.Action)}
	}
	return a.repo.List(ctx, filter)
}
