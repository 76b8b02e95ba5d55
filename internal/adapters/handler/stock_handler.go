package handler

import (
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type StockHandler struct {
	stock ports.StockService
}

func NewStockHandler(stock ports.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

type upsertStockRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Order       int    `json:"order,omitempty"`
}

func (h *StockHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertStockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.stock.Upsert(r.Context(), &domain.StockItem{
		ID:          req.ID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Order:       req.Order,
	}, middleware.ActorID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *StockHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.stock.Remove(r.Context(), r.PathValue("id"), middleware.ActorID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.stock.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
