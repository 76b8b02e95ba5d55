package handler

import (
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type StaffHandler struct {
	staff ports.StaffService
}

func NewStaffHandler(staff ports.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

type createStaffRequest struct {
	LoginID string `json:"loginId"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.staff.Create(r.Context(), req.LoginID, req.Name, domain.StaffRole(req.Role), middleware.ActorID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *StaffHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.Remove(r.Context(), r.PathValue("id"), middleware.ActorID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.staff.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
