package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type AuditHandler struct {
	audit ports.AuditService
}

func NewAuditHandler(audit ports.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Export returns the audit trail, oldest first. Filters arrive as query
// parameters; timestamps are RFC 3339.
func (h *AuditHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := ports.AuditFilter{
		Actor:  r.URL.Query().Get("actor"),
		Action: domain.AuditAction(r.URL.Query().Get("action")),
	}

	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "since", Reason: "must be RFC 3339"})
			return
		}
		filter.Since = t
	}
	if until := r.URL.Query().Get("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "until", Reason: "must be RFC 3339"})
			return
		}
		filter.Until = t
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, &domain.ValidationError{Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}

	records, err := h.audit.Export(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
