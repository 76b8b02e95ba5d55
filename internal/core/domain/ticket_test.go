package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTicket(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		roomID     string
		issue      string
		reportedBy string
		wantErr    bool
		wantBy     string
	}{
		{
			name:       "valid_staff_report",
			roomID:     "101",
			issue:      "AC not cooling",
			reportedBy: "Ravi",
			wantBy:     "Ravi",
		},
		{
			name:    "anonymous_report_attributed_to_guest",
			roomID:  "101",
			issue:   "TV remote missing",
			wantBy:  ReporterGuest,
		},
		{
			name:    "missing_room",
			issue:   "leaky tap",
			wantErr: true,
		},
		{
			name:    "missing_issue",
			roomID:  "101",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := NewTicket("t1", tt.roomID, tt.issue, tt.reportedBy, now)
			if tt.wantErr {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ticket.Status != TicketOpen {
				t.Errorf("new ticket status = %s, want open", ticket.Status)
			}
			if ticket.ReportedBy != tt.wantBy {
				t.Errorf("reportedBy = %s, want %s", ticket.ReportedBy, tt.wantBy)
			}
		})
	}
}

func TestTicketResolve(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket, err := NewTicket("t1", "101", "AC not cooling", "Guest", now)
	if err != nil {
		t.Fatalf("NewTicket: %v", err)
	}

	if err := ticket.Resolve("Priya", now.Add(time.Hour)); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if ticket.Status != TicketResolved || ticket.ResolvedBy != "Priya" || ticket.ResolvedAt == nil {
		t.Errorf("resolution not recorded: %+v", ticket)
	}

	err = ticket.Resolve("Someone Else", now.Add(2*time.Hour))
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("second resolve: expected InvalidTransitionError, got %v", err)
	}
	if ticket.ResolvedBy != "Priya" {
		t.Errorf("second resolve overwrote resolver: %s", ticket.ResolvedBy)
	}
}

func TestTicketReopen(t *testing.T) {
	now := time.Now().UTC()
	ticket, _ := NewTicket("t1", "101", "broken lock", "Guest", now)
	_ = ticket.Resolve("Priya", now)

	ticket.Reopen()
	if ticket.Status != TicketOpen || ticket.ResolvedBy != "" || ticket.ResolvedAt != nil {
		t.Errorf("reopen did not clear resolution: %+v", ticket)
	}
}
