package domain

import (
	"errors"
	"testing"
	"time"
)

func pendingRequest() *Request {
	return &Request{
		ID:           "r1",
		SenderID:     "s1",
		SenderName:   "Anil",
		ReceiverID:   "s2",
		ReceiverName: "Maya",
		Content:      "cover the front desk at 6",
		Status:       RequestPending,
		CreatedAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRequestRespond(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prepare  func(*Request)
		actorID  string
		decision RequestDecision
		reason   string
		wantErr  any
		want     RequestStatus
	}{
		{
			name:     "receiver_accepts",
			actorID:  "s2",
			decision: DecisionAccept,
			want:     RequestAccepted,
		},
		{
			name:     "receiver_rejects_with_reason",
			actorID:  "s2",
			decision: DecisionReject,
			reason:   "already on another shift",
			want:     RequestRejected,
		},
		{
			name:     "reject_requires_reason",
			actorID:  "s2",
			decision: DecisionReject,
			wantErr:  &ValidationError{},
		},
		{
			name:     "sender_cannot_respond",
			actorID:  "s1",
			decision: DecisionAccept,
			wantErr:  &ValidationError{},
		},
		{
			name:     "unknown_decision",
			actorID:  "s2",
			decision: "maybe",
			wantErr:  &ValidationError{},
		},
		{
			name:     "already_accepted_is_stale",
			prepare:  func(r *Request) { _ = r.Respond("s2", DecisionAccept, "", now) },
			actorID:  "s2",
			decision: DecisionReject,
			reason:   "changed my mind",
			wantErr:  &StaleStateError{},
		},
		{
			name:     "already_rejected_is_stale",
			prepare:  func(r *Request) { _ = r.Respond("s2", DecisionReject, "busy", now) },
			actorID:  "s2",
			decision: DecisionAccept,
			wantErr:  &StaleStateError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pendingRequest()
			if tt.prepare != nil {
				tt.prepare(req)
			}

			err := req.Respond(tt.actorID, tt.decision, tt.reason, now)
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.Status != tt.want {
					t.Errorf("status = %s, want %s", req.Status, tt.want)
				}
			case *ValidationError:
				if !errors.As(err, &want) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
			case *StaleStateError:
				if !errors.As(err, &want) {
					t.Fatalf("expected StaleStateError, got %v", err)
				}
			}
		})
	}
}

func TestRequestComplete(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("accepted_request_completes", func(t *testing.T) {
		req := pendingRequest()
		if err := req.Respond("s2", DecisionAccept, "", now); err != nil {
			t.Fatalf("accept: %v", err)
		}
		if err := req.Complete("s2", "done early", now.Add(time.Hour)); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if req.Status != RequestCompleted || req.CompletionRemark != "done early" {
			t.Errorf("completion not recorded: %+v", req)
		}
	})

	t.Run("pending_request_cannot_complete", func(t *testing.T) {
		req := pendingRequest()
		err := req.Complete("s2", "", now)
		var transition *InvalidTransitionError
		if !errors.As(err, &transition) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("sender_cannot_complete", func(t *testing.T) {
		req := pendingRequest()
		_ = req.Respond("s2", DecisionAccept, "", now)
		err := req.Complete("s1", "", now)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("completed_is_terminal", func(t *testing.T) {
		req := pendingRequest()
		_ = req.Respond("s2", DecisionAccept, "", now)
		_ = req.Complete("s2", "", now)
		err := req.Complete("s2", "again", now)
		var transition *InvalidTransitionError
		if !errors.As(err, &transition) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})
}
