package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/repository"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

func newRequestsEnv(t *testing.T) (*Requests, ports.Store) {
	t.Helper()
	store := repository.NewMemoryStore(nil)
	svc := NewRequests(store, NewAuditRecorder(store.Audit()))
	svc.nowFn = testClock()
	svc.newID = sequentialIDs("req")
	return svc, store
}

func seedStaff(t *testing.T, store ports.Store, id, name string, role domain.StaffRole) {
	t.Helper()
	err := store.Staff().Create(context.Background(), &domain.Staff{
		ID: id, LoginID: strings.ToLower(name), Name: name, Role: role,
	})
	if err != nil {
		t.Fatalf("seed staff %s: %v", id, err)
	}
}

func TestRequestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("denormalizes_names", func(t *testing.T) {
		svc, store := newRequestsEnv(t)
		seedStaff(t, store, "s1", "Anil", domain.RoleStaff)
		seedStaff(t, store, "s2", "Maya", domain.RoleStaff)

		request, err := svc.Send(ctx, "s1", "s2", "cover the front desk at 6")
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if request.SenderName != "Anil" || request.ReceiverName != "Maya" {
			t.Errorf("names not denormalized: %+v", request)
		}
		if request.Status != domain.RequestPending {
			t.Errorf("status = %s, want pending", request.Status)
		}
	})

	t.Run("self_send_rejected", func(t *testing.T) {
		svc, store := newRequestsEnv(t)
		seedStaff(t, store, "s1", "Anil", domain.RoleStaff)

		_, err := svc.Send(ctx, "s1", "s1", "note to self")
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown_receiver", func(t *testing.T) {
		svc, store := newRequestsEnv(t)
		seedStaff(t, store, "s1", "Anil", domain.RoleStaff)

		_, err := svc.Send(ctx, "s1", "ghost", "hello?")
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

// Two responders race on the same pending request; the store linearizes the
// writes so exactly one decision lands and every other responder gets a
// stale-state rejection.
func TestConcurrentRespondExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	svc, store := newRequestsEnv(t)
	seedStaff(t, store, "s1", "Anil", domain.RoleStaff)
	seedStaff(t, store, "s2", "Maya", domain.RoleStaff)

	request, err := svc.Send(ctx, "s1", "s2", "restock floor 2 cart")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	const responders = 8
	decisions := []domain.RequestDecision{domain.DecisionAccept, domain.DecisionReject}

	var wg sync.WaitGroup
	errs := make([]error, responders)
	for i := 0; i < responders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Respond(ctx, request.ID, "s2", decisions[i%2], "beaten to it")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			var stale *domain.StaleStateError
			if !errors.As(err, &stale) {
				t.Errorf("loser got %v, want StaleStateError", err)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	final, _ := store.Requests().Get(ctx, request.ID)
	if final.Status != domain.RequestAccepted && final.Status != domain.RequestRejected {
		t.Errorf("final status = %s, want a decided state", final.Status)
	}
}

func TestRequestCompleteFlow(t *testing.T) {
	ctx := context.Background()
	svc, store := newRequestsEnv(t)
	seedStaff(t, store, "s1", "Anil", domain.RoleStaff)
	seedStaff(t, store, "s2", "Maya", domain.RoleStaff)

	request, _ := svc.Send(ctx, "s1", "s2", "restock floor 2 cart")

	if _, err := svc.Complete(ctx, request.ID, "s2", ""); err == nil {
		t.Fatal("completing a pending request should fail")
	}

	if _, err := svc.Respond(ctx, request.ID, "s2", domain.DecisionAccept, ""); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	done, err := svc.Complete(ctx, request.ID, "s2", "cart restocked")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != domain.RequestCompleted || done.CompletionRemark != "cart restocked" {
		t.Errorf("completion not recorded: %+v", done)
	}

	records, _ := store.Audit().List(ctx, ports.AuditFilter{Action: domain.ActionRequestComplete})
	if len(records) != 1 {
		t.Fatalf("audit records for completion = %d, want 1", len(records))
	}
	if !strings.Contains(records[0].Details, "cart restocked") {
		t.Errorf("completion remark missing from audit details: %s", records[0].Details)
	}
}

func TestRespondOnlyReceiver(t *testing.T) {
	ctx := context.Background()
	svc, store := newRequestsEnv(t)
	seedStaff(t, store, "s1", "Anil", domain.RoleStaff)
	seedStaff(t, store, "s2", "Maya", domain.RoleStaff)
	seedStaff(t, store, "s3", "Ravi", domain.RoleStaff)

	request, _ := svc.Send(ctx, "s1", "s2", "cover the front desk at 6")

	for _, actor := range []string{"s1", "s3"} {
		_, err := svc.Respond(ctx, request.ID, actor, domain.DecisionAccept, "")
		var validation *domain.ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("actor %s: expected ValidationError, got %v", actor, err)
		}
	}
}
