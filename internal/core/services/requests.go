package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

type Requests struct {
	store ports.Store
	audit *AuditRecorder
	nowFn func() time.Time
	newID func() string
}

var _ ports.RequestService = (*Requests)(nil)

func NewRequests(store ports.Store, audit *AuditRecorder) *Requests {
	return &Requests{
		store: store,
		audit: audit,
		nowFn: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Send creates a pending request. Sender and receiver names are resolved
// once and denormalized onto the document.
func (s *Requests) Send(ctx context.Context, senderID, receiverID, content string) (*domain.Request, error) {
	if content == "" {
		return nil, &domain.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if receiverID == "" {
		return nil, &domain.ValidationError{Field: "receiverId", Reason: "must not be empty"}
	}
	if senderID == receiverID {
		return nil, &domain.ValidationError{Field: "receiverId", Reason: "sender and receiver must differ"}
	}
	sender, err := s.store.Staff().Get(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.store.Staff().Get(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	request := &domain.Request{
		ID:           s.newID(),
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		ReceiverID:   receiver.ID,
		ReceiverName: receiver.Name,
		Content:      content,
		Status:       domain.RequestPending,
		CreatedAt:    s.nowFn(),
	}
	if err := s.store.Requests().Create(ctx, request); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, sender.Name, domain.ActionRequestSend,
		fmt.Sprintf("to %s: %s", receiver.Name, content))
	return request, nil
}

// Respond applies the receiver's decision. The document guard inside the
// update rejects the loser of a concurrent accept/reject race.
func (s *Requests) Respond(ctx context.Context, requestID, actorID string, decision domain.RequestDecision, reason string) (*domain.Request, error) {
	request, err := s.store.Requests().Update(ctx, requestID, func(r *domain.Request) error {
		return r.Respond(actorID, decision, reason, s.nowFn())
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("request from %s %s", request.SenderName, decision)
	if decision == domain.DecisionReject {
		details += ": " + reason
	}
	s.audit.Record(ctx, request.ReceiverName, domain.ActionRequestRespond, details)
	return request, nil
}

func (s *Requests) Complete(ctx context.Context, requestID, actorID, remark string) (*domain.Request, error) {
	request, err := s.store.Requests().Update(ctx, requestID, func(r *domain.Request) error {
		return r.Complete(actorID, remark, s.nowFn())
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("request from %s completed", request.SenderName)
	if remark != "" {
		details += ": " + remark
	}
	s.audit.Record(ctx, request.ReceiverName, domain.ActionRequestComplete, details)
	return request, nil
}
