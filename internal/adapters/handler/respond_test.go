package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation_is_bad_request",
			err:        &domain.ValidationError{Field: "issue", Reason: "must not be empty"},
			wantStatus: 400,
		},
		{
			name:       "not_found",
			err:        &domain.NotFoundError{Entity: "room", ID: "999"},
			wantStatus: 404,
		},
		{
			name:       "invalid_transition_is_conflict",
			err:        &domain.InvalidTransitionError{Entity: "ticket", ID: "t1", From: "resolved", To: "resolved"},
			wantStatus: 409,
		},
		{
			name:       "stale_state_is_conflict",
			err:        &domain.StaleStateError{Entity: "request", ID: "r1", Detail: "already accepted"},
			wantStatus: 409,
		},
		{
			name:       "conflicting_state_is_conflict",
			err:        &domain.ConflictingStateError{Detail: "open tickets remain"},
			wantStatus: 409,
		},
		{
			name: "partial_failure_is_server_error",
			err: &domain.PartialFailureError{
				Entities: []string{"ticket/t1", "room/101"},
				Detail:   "compensation failed",
				Cause:    errors.New("boom"),
			},
			wantStatus: 500,
		},
		{
			name:       "unknown_error_is_server_error",
			err:        errors.New("connection reset"),
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestWriteErrorPartialFailureNamesEntities(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &domain.PartialFailureError{
		Entities: []string{"ticket/t1", "room/101"},
		Detail:   "compensation failed",
		Cause:    errors.New("boom"),
	})

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if len(body.Entities) != 2 {
		t.Errorf("entities = %v, want both inconsistent documents", body.Entities)
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed"))

	var body errorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal error" {
		t.Errorf("internal detail leaked to client: %q", body.Error)
	}
}
