package handler

import (
	"net/http"
	"strconv"

	"github.com/aladdin-hotel/operations-sync-service/internal/adapters/middleware"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// MaintenanceHandler exposes the room and ticket surface. Room status never
// changes directly through this API except the maintenance release; the
// ticket lifecycle drives everything else.
type MaintenanceHandler struct {
	maintenance ports.MaintenanceService
	rooms       ports.RoomRepository
	tickets     ports.TicketRepository
}

func NewMaintenanceHandler(maintenance ports.MaintenanceService, rooms ports.RoomRepository, tickets ports.TicketRepository) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance, rooms: rooms, tickets: tickets}
}

type createTicketRequest struct {
	RoomID     string `json:"roomId"`
	Issue      string `json:"issue"`
	ReportedBy string `json:"reportedBy,omitempty"`
}

func (h *MaintenanceHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reportedBy := req.ReportedBy
	if reportedBy == "" {
		reportedBy = middleware.ActorName(r.Context())
	}
	if reportedBy == "" {
		reportedBy = middleware.ActorID(r.Context())
	}

	ticket, err := h.maintenance.CreateTicket(r.Context(), req.RoomID, req.Issue, reportedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *MaintenanceHandler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := r.PathValue("id")

	resolvedBy := middleware.ActorName(r.Context())
	if resolvedBy == "" {
		resolvedBy = middleware.ActorID(r.Context())
	}

	ticket, err := h.maintenance.ResolveTicket(r.Context(), ticketID, resolvedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

type setRoomStatusRequest struct {
	Status string `json:"status"`
}

func (h *MaintenanceHandler) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")

	var req setRoomStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room, err := h.maintenance.SetRoomStatus(r.Context(), roomID, domain.RoomStatus(req.Status), middleware.ActorID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *MaintenanceHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if raw := r.URL.Query().Get("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "floor", Reason: "must be an integer"})
			return
		}
		filtered := make([]domain.Room, 0, len(rooms))
		for _, room := range rooms {
			if room.Floor == floor {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	writeJSON(w, http.StatusOK, rooms)
}

func (h *MaintenanceHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *MaintenanceHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	if roomID := r.URL.Query().Get("roomId"); roomID != "" {
		tickets, err := h.tickets.ListOpenByRoom(r.Context(), roomID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tickets)
		return
	}

	tickets, err := h.tickets.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}
