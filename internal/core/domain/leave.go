package domain

import "time"

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

type LeaveDecision string

const (
	LeaveDecisionApprove LeaveDecision = "approved"
	LeaveDecisionReject  LeaveDecision = "rejected"
)

// LeaveApplication is single-step: the first administrator decision is
// final, and a rejected application is never resubmitted under the same key.
type LeaveApplication struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Type      string      `json:"type"`
	Remarks   string      `json:"remarks,omitempty"`
	Status    LeaveStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	DecidedBy string      `json:"decidedBy,omitempty"`
	DecidedAt *time.Time  `json:"decidedAt,omitempty"`
}

func NewLeaveApplication(id, userID, leaveType, remarks string, now time.Time) (*LeaveApplication, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "must not be empty"}
	}
	if leaveType == "" {
		return nil, &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	return &LeaveApplication{
		ID:        id,
		UserID:    userID,
		Type:      leaveType,
		Remarks:   remarks,
		Status:    LeavePending,
		CreatedAt: now,
	}, nil
}

// Decide records the administrator's decision. A second decision loses to
// whichever write the store accepted first.
func (l *LeaveApplication) Decide(decidedBy string, decision LeaveDecision, now time.Time) error {
	if l.Status != LeavePending {
		return &StaleStateError{
			Entity: "leave application",
			ID:     l.ID,
			Detail: "application was already " + string(l.Status),
		}
	}
	switch decision {
	case LeaveDecisionApprove:
		l.Status = LeaveApproved
	case LeaveDecisionReject:
		l.Status = LeaveRejected
	default:
		return &ValidationError{Field: "decision", Reason: "must be approved or rejected"}
	}
	l.DecidedBy = decidedBy
	l.DecidedAt = &now
	return nil
}
