package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/repository"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

func TestRecordUnknownActionPanics(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	recorder := NewAuditRecorder(store.Audit())

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown audit action")
		}
	}()
	recorder.Record(context.Background(), "someone", "NOT_A_REAL_ACTION", "details")
}

type failingAuditRepo struct{}

func (failingAuditRepo) Append(ctx context.Context, record *domain.AuditRecord) error {
	return errors.New("append failed")
}

func (failingAuditRepo) List(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditRecord, error) {
	return nil, nil
}

// A failed append must not propagate: audit is best-effort and the causing
// command already committed.
func TestRecordSwallowsAppendFailure(t *testing.T) {
	recorder := NewAuditRecorder(failingAuditRepo{})
	recorder.Record(context.Background(), "someone", domain.ActionStockUpdate, "towels set to 40")
}

func TestExportFilter(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(nil)
	recorder := NewAuditRecorder(store.Audit())
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	recorder.nowFn = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	recorder.Record(ctx, "Anil", domain.ActionStockUpdate, "towels set to 40")
	recorder.Record(ctx, "Maya", domain.ActionLeaveApply, "sick")
	recorder.Record(ctx, "Anil", domain.ActionStockUpdate, "towels set to 35")

	export := NewAuditExport(store.Audit())

	records, err := export.Export(ctx, ports.AuditFilter{Actor: "Anil"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("actor filter returned %d records, want 2", len(records))
	}
	if !records[0].Timestamp.Before(records[1].Timestamp) {
		t.Error("export not in chronological order")
	}

	records, err = export.Export(ctx, ports.AuditFilter{Since: base.Add(90 * time.Second)})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("since filter returned %d records, want 2", len(records))
	}

	records, err = export.Export(ctx, ports.AuditFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("limit filter returned %d records, want 1", len(records))
	}

	_, err = export.Export(ctx, ports.AuditFilter{Action: "NOT_A_REAL_ACTION"})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown action, got %v", err)
	}
}
