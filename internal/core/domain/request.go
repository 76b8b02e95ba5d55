package domain

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

// RequestDecision is a receiver's answer to a pending request.
type RequestDecision string

const (
	DecisionAccept RequestDecision = "accepted"
	DecisionReject RequestDecision = "rejected"
)

// Request is a directed work item between two staff members. Only the
// receiver may advance it; the sender has read-only visibility. Sender and
// receiver names are denormalized so list views never need a join.
type Request struct {
	ID               string        `json:"id"`
	SenderID         string        `json:"senderId"`
	SenderName       string        `json:"senderName"`
	ReceiverID       string        `json:"receiverId"`
	ReceiverName     string        `json:"receiverName"`
	Content          string        `json:"content"`
	Status           RequestStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	AcceptedAt       *time.Time    `json:"acceptedAt,omitempty"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
	CompletionRemark string        `json:"completionRemark,omitempty"`
}

func (r *Request) requireReceiver(actorID string) error {
	if actorID != r.ReceiverID {
		return &ValidationError{Field: "actor", Reason: "only the receiver may act on a request"}
	}
	return nil
}

// Respond applies the receiver's accept/reject decision. A request already
// decided by a concurrent responder yields StaleStateError so the loser of
// the race knows to refetch instead of overwriting.
func (r *Request) Respond(actorID string, decision RequestDecision, reason string, now time.Time) error {
	if err := r.requireReceiver(actorID); err != nil {
		return err
	}
	switch r.Status {
	case RequestPending:
	case RequestAccepted, RequestRejected:
		return &StaleStateError{
			Entity: "request",
			ID:     r.ID,
			Detail: "request was already " + string(r.Status),
		}
	default:
		return &InvalidTransitionError{
			Entity: "request",
			ID:     r.ID,
			From:   string(r.Status),
			To:     string(decision),
		}
	}

	switch decision {
	case DecisionAccept:
		r.Status = RequestAccepted
		r.AcceptedAt = &now
	case DecisionReject:
		if reason == "" {
			return &ValidationError{Field: "rejectionReason", Reason: "required when rejecting"}
		}
		r.Status = RequestRejected
		r.RejectionReason = reason
		r.CompletedAt = &now
	default:
		return &ValidationError{Field: "decision", Reason: "must be accepted or rejected"}
	}
	return nil
}

// Complete closes out an accepted request. Completed and rejected are
// terminal; there is no way back out of either.
func (r *Request) Complete(actorID, remark string, now time.Time) error {
	if err := r.requireReceiver(actorID); err != nil {
		return err
	}
	if r.Status != RequestAccepted {
		return &InvalidTransitionError{
			Entity: "request",
			ID:     r.ID,
			From:   string(r.Status),
			To:     string(RequestCompleted),
			Reason: "only an accepted request can be completed",
		}
	}
	r.Status = RequestCompleted
	r.CompletionRemark = remark
	r.CompletedAt = &now
	return nil
}
