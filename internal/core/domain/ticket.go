package domain

import "time"

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketResolved TicketStatus = "resolved"
)

// Ticket records a maintenance issue against a room. Tickets are one-way:
// once resolved they stay resolved, and a recurring issue gets a new ticket.
type Ticket struct {
	ID         string       `json:"id"`
	RoomID     string       `json:"roomId"`
	Issue      string       `json:"issue"`
	Status     TicketStatus `json:"status"`
	ReportedBy string       `json:"reportedBy"`
	CreatedAt  time.Time    `json:"createdAt"`
	ResolvedBy string       `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
}

// ReporterGuest is recorded when an issue is reported without an
// authenticated staff member attached.
const ReporterGuest = "Guest"

func NewTicket(id, roomID, issue, reportedBy string, now time.Time) (*Ticket, error) {
	if roomID == "" {
		return nil, &ValidationError{Field: "roomId", Reason: "must not be empty"}
	}
	if issue == "" {
		return nil, &ValidationError{Field: "issue", Reason: "must not be empty"}
	}
	if reportedBy == "" {
		reportedBy = ReporterGuest
	}
	return &Ticket{
		ID:         id,
		RoomID:     roomID,
		Issue:      issue,
		Status:     TicketOpen,
		ReportedBy: reportedBy,
		CreatedAt:  now,
	}, nil
}

// Resolve stamps the resolution. Resolving an already-resolved ticket is
// rejected rather than treated as a silent no-op.
func (t *Ticket) Resolve(resolvedBy string, now time.Time) error {
	if t.Status == TicketResolved {
		return &InvalidTransitionError{
			Entity: "ticket",
			ID:     t.ID,
			From:   string(TicketResolved),
			To:     string(TicketResolved),
			Reason: "ticket is already resolved",
		}
	}
	t.Status = TicketResolved
	t.ResolvedBy = resolvedBy
	t.ResolvedAt = &now
	return nil
}

// Reopen reverts a resolution. It exists only as the compensating write for
// a resolve whose dependent room update failed; there is no reopen command.
func (t *Ticket) Reopen() {
	t.Status = TicketOpen
	t.ResolvedBy = ""
	t.ResolvedAt = nil
}
