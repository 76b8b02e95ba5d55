package services

import (
	"context"
	"strings"
	"testing"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/repository"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

func newLaundryEnv(t *testing.T) (*Laundry, ports.Store) {
	t.Helper()
	store := repository.NewMemoryStore(nil)
	svc := NewLaundry(store, NewAuditRecorder(store.Audit()))
	svc.nowFn = testClock()
	svc.newID = sequentialIDs("batch")
	return svc, store
}

func TestSendBatchAuditCounts(t *testing.T) {
	ctx := context.Background()
	svc, store := newLaundryEnv(t)

	_, err := svc.SendBatch(ctx, "Kumar", map[string]int{"towels": 20, "bed sheets": 10})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}

	records, _ := store.Audit().List(ctx, ports.AuditFilter{Action: domain.ActionLaundrySent})
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].Details != "2 item(s), 30 piece(s) sent" {
		t.Errorf("audit details = %q", records[0].Details)
	}
}

// Item verdicts are working state, not transitions; only send and receive
// appear in the audit trail.
func TestAdjudicateProducesNoAudit(t *testing.T) {
	ctx := context.Background()
	svc, store := newLaundryEnv(t)

	batch, _ := svc.SendBatch(ctx, "Kumar", map[string]int{"towels": 20})
	if _, err := svc.AdjudicateItem(ctx, batch.ID, "towels", domain.VerdictCorrect, "", "Maya"); err != nil {
		t.Fatalf("AdjudicateItem: %v", err)
	}

	records, _ := store.Audit().List(ctx, ports.AuditFilter{})
	for _, rec := range records {
		if rec.Action != domain.ActionLaundrySent {
			t.Errorf("unexpected audit record %s: %s", rec.Action, rec.Details)
		}
	}
}

func TestFinalizeBatchAuditDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("override_names_unverified_items", func(t *testing.T) {
		svc, store := newLaundryEnv(t)
		batch, _ := svc.SendBatch(ctx, "Kumar", map[string]int{"towels": 20, "bed sheets": 10})
		if _, err := svc.AdjudicateItem(ctx, batch.ID, "towels", domain.VerdictCorrect, "", "Maya"); err != nil {
			t.Fatalf("AdjudicateItem: %v", err)
		}

		if _, err := svc.FinalizeBatch(ctx, batch.ID, "Maya", true); err != nil {
			t.Fatalf("FinalizeBatch: %v", err)
		}

		records, _ := store.Audit().List(ctx, ports.AuditFilter{Action: domain.ActionLaundryReceived})
		if len(records) != 1 {
			t.Fatalf("audit records = %d, want 1", len(records))
		}
		if !strings.Contains(records[0].Details, "unverified override for: bed sheets") {
			t.Errorf("audit details = %q, want override note", records[0].Details)
		}
	})

	t.Run("fully_verified_batch", func(t *testing.T) {
		svc, store := newLaundryEnv(t)
		batch, _ := svc.SendBatch(ctx, "Kumar", map[string]int{"towels": 20})
		if _, err := svc.AdjudicateItem(ctx, batch.ID, "towels", domain.VerdictIncorrect, "2 short", "Maya"); err != nil {
			t.Fatalf("AdjudicateItem: %v", err)
		}

		if _, err := svc.FinalizeBatch(ctx, batch.ID, "Maya", false); err != nil {
			t.Fatalf("FinalizeBatch: %v", err)
		}

		records, _ := store.Audit().List(ctx, ports.AuditFilter{Action: domain.ActionLaundryReceived})
		if len(records) != 1 || records[0].Details != "all items verified" {
			t.Errorf("audit records = %+v, want one 'all items verified' entry", records)
		}
	})

	t.Run("finalize_without_override_rejected_and_unaudited", func(t *testing.T) {
		svc, store := newLaundryEnv(t)
		batch, _ := svc.SendBatch(ctx, "Kumar", map[string]int{"towels": 20})

		if _, err := svc.FinalizeBatch(ctx, batch.ID, "Maya", false); err == nil {
			t.Fatal("expected finalize to fail with unadjudicated items")
		}

		records, _ := store.Audit().List(ctx, ports.AuditFilter{Action: domain.ActionLaundryReceived})
		if len(records) != 0 {
			t.Errorf("failed finalize produced audit records: %+v", records)
		}
	})
}
