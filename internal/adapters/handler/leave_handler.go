package handler

import (
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type LeaveHandler struct {
	leave ports.LeaveService
	repo  ports.LeaveRepository
}

func NewLeaveHandler(leave ports.LeaveService, repo ports.LeaveRepository) *LeaveHandler {
	return &LeaveHandler{leave: leave, repo: repo}
}

type applyLeaveRequest struct {
	Type    string `json:"type"`
	Remarks string `json:"remarks,omitempty"`
}

func (h *LeaveHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	leave, err := h.leave.Apply(r.Context(), middleware.ActorID(r.Context()), req.Type, req.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, leave)
}

type decideLeaveRequest struct {
	Decision string `json:"decision"`
}

func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decideLeaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	leave, err := h.leave.Decide(r.Context(), r.PathValue("id"), middleware.ActorID(r.Context()), domain.LeaveDecision(req.Decision))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leave)
}

func (h *LeaveHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.leave.Remove(r.Context(), r.PathValue("id"), middleware.ActorID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	leaves, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaves)
}
