package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Entities []string `json:"entities,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Conflicts of any kind
// (lost races, invalid transitions, cross-document disagreement) are 409 so
// clients refresh and retry; validation is 400; a partial failure is a 500
// because the server left documents inconsistent.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		transition *domain.InvalidTransitionError
		stale      *domain.StaleStateError
		conflict   *domain.ConflictingStateError
		partial    *domain.PartialFailureError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: transition.Error()})
	case errors.As(err, &stale):
		writeJSON(w, http.StatusConflict, errorResponse{Error: stale.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Error()})
	case errors.As(err, &partial):
		log.Printf("partial failure: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    partial.Error(),
			Entities: partial.Entities,
		})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return false
	}
	return true
}
