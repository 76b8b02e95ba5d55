package handler

import (
	"net/http"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type RequestsHandler struct {
	requests ports.RequestService
	repo     ports.RequestRepository
}

func NewRequestsHandler(requests ports.RequestService, repo ports.RequestRepository) *RequestsHandler {
	return &RequestsHandler{requests: requests, repo: repo}
}

type sendRequestRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (h *RequestsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.requests.Send(r.Context(), middleware.ActorID(r.Context()), req.ReceiverID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

type respondRequestRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func (h *RequestsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.requests.Respond(
		r.Context(),
		r.PathValue("id"),
		middleware.ActorID(r.Context()),
		domain.RequestDecision(req.Decision),
		req.Reason,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

type completeRequestRequest struct {
	Remark string `json:"remark,omitempty"`
}

func (h *RequestsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.requests.Complete(r.Context(), r.PathValue("id"), middleware.ActorID(r.Context()), req.Remark)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

// List returns the caller's requests: sent, received, or both.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())

	var (
		requests []domain.Request
		err      error
	)
	switch r.URL.Query().Get("box") {
	case "sent":
		requests, err = h.repo.ListBySender(r.Context(), actorID)
	case "received":
		requests, err = h.repo.ListByReceiver(r.Context(), actorID)
	default:
		sent, sentErr := h.repo.ListBySender(r.Context(), actorID)
		if sentErr != nil {
			writeError(w, sentErr)
			return
		}
		received, recvErr := h.repo.ListByReceiver(r.Context(), actorID)
		if recvErr != nil {
			writeError(w, recvErr)
			return
		}
		requests = append(sent, received...)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
