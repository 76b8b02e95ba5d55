package handler

import (
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type LaundryHandler struct {
	laundry ports.LaundryService
	repo    ports.LaundryRepository
}

func NewLaundryHandler(laundry ports.LaundryService, repo ports.LaundryRepository) *LaundryHandler {
	return &LaundryHandler{laundry: laundry, repo: repo}
}

type sendBatchRequest struct {
	Items map[string]int `json:"items"`
}

func (h *LaundryHandler) SendBatch(w http.ResponseWriter, r *http.Request) {
	var req sendBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sentBy := middleware.ActorName(r.Context())
	if sentBy == "" {
		sentBy = middleware.ActorID(r.Context())
	}

	batch, err := h.laundry.SendBatch(r.Context(), sentBy, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

type adjudicateItemRequest struct {
	Item    string `json:"item"`
	Verdict string `json:"verdict"`
	Remark  string `json:"remark,omitempty"`
}

func (h *LaundryHandler) AdjudicateItem(w http.ResponseWriter, r *http.Request) {
	var req adjudicateItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	batch, err := h.laundry.AdjudicateItem(
		r.Context(),
		r.PathValue("id"),
		req.Item,
		domain.ItemVerdict(req.Verdict),
		req.Remark,
		middleware.ActorID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

type finalizeBatchRequest struct {
	Override bool `json:"override,omitempty"`
}

func (h *LaundryHandler) FinalizeBatch(w http.ResponseWriter, r *http.Request) {
	var req finalizeBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receivedBy := middleware.ActorName(r.Context())
	if receivedBy == "" {
		receivedBy = middleware.ActorID(r.Context())
	}

	batch, err := h.laundry.FinalizeBatch(r.Context(), r.PathValue("id"), receivedBy, req.Override)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (h *LaundryHandler) List(w http.ResponseWriter, r *http.Request) {
	batches, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *LaundryHandler) Get(w http.ResponseWriter, r *http.Request) {
	batch, err := h.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
