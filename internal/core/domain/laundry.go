package domain

import (
	"sort"
	"strings"
	"time"
)

type ItemVerdict string

const (
	VerdictPending   ItemVerdict = "pending"
	VerdictCorrect   ItemVerdict = "correct"
	VerdictIncorrect ItemVerdict = "incorrect"
)

type BatchStatus string

const (
	BatchPending  BatchStatus = "pending"
	BatchReceived BatchStatus = "received"
)

// LaundryItem is one line of a sent batch. A discrepancy verdict carries a
// remark ("2 short"); a correct verdict clears any earlier remark.
type LaundryItem struct {
	SentQty int         `json:"sentQty"`
	Status  ItemVerdict `json:"status"`
	Remark  string      `json:"remark,omitempty"`
}

// LaundryBatch is a verification record for linen sent out and counted back
// in. It never feeds stock quantities: items in transit or discarded make
// sent/received counts legitimately diverge from resting stock, so stock
// stays a separately maintained ledger.
type LaundryBatch struct {
	ID         string                 `json:"id"`
	SentBy     string                 `json:"sentBy"`
	CreatedAt  time.Time              `json:"createdAt"`
	Items      map[string]LaundryItem `json:"items"`
	Status     BatchStatus            `json:"status"`
	ReceivedBy string                 `json:"receivedBy,omitempty"`
	ReceivedAt *time.Time             `json:"receivedAt,omitempty"`
}

func NewLaundryBatch(id, sentBy string, items map[string]int, now time.Time) (*LaundryBatch, error) {
	if sentBy == "" {
		return nil, &ValidationError{Field: "sentBy", Reason: "must not be empty"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "batch must contain at least one item"}
	}
	batch := &LaundryBatch{
		ID:        id,
		SentBy:    sentBy,
		CreatedAt: now,
		Items:     make(map[string]LaundryItem, len(items)),
		Status:    BatchPending,
	}
	for name, qty := range items {
		if name == "" {
			return nil, &ValidationError{Field: "items", Reason: "item name must not be empty"}
		}
		if qty <= 0 {
			return nil, &ValidationError{Field: "items", Reason: "sent quantity for " + name + " must be positive"}
		}
		batch.Items[name] = LaundryItem{SentQty: qty, Status: VerdictPending}
	}
	return batch, nil
}

// Adjudicate marks one item correct or incorrect. Adjudication is
// idempotent: re-marking an item simply overwrites its prior verdict.
func (b *LaundryBatch) Adjudicate(itemName string, verdict ItemVerdict, remark string) error {
	if b.Status == BatchReceived {
		return &InvalidTransitionError{
			Entity: "laundry batch",
			ID:     b.ID,
			From:   string(BatchReceived),
			To:     string(BatchReceived),
			Reason: "batch verification was already submitted",
		}
	}
	item, ok := b.Items[itemName]
	if !ok {
		return &ValidationError{Field: "itemName", Reason: "no such item in batch: " + itemName}
	}
	switch verdict {
	case VerdictCorrect:
		item.Status = VerdictCorrect
		item.Remark = ""
	case VerdictIncorrect:
		if remark == "" {
			return &ValidationError{Field: "remark", Reason: "required when marking an item incorrect"}
		}
		item.Status = VerdictIncorrect
		item.Remark = remark
	default:
		return &ValidationError{Field: "verdict", Reason: "must be correct or incorrect"}
	}
	b.Items[itemName] = item
	return nil
}

// UnadjudicatedItems returns the names of items still awaiting a verdict,
// sorted for stable messages and audit details.
func (b *LaundryBatch) UnadjudicatedItems() []string {
	var names []string
	for name, item := range b.Items {
		if item.Status == VerdictPending {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Finalize submits the verification. When items are still unadjudicated the
// operator must pass override explicitly; the system never silently treats
// an unverified item as correct.
func (b *LaundryBatch) Finalize(receivedBy string, override bool, now time.Time) error {
	if receivedBy == "" {
		return &ValidationError{Field: "receivedBy", Reason: "must not be empty"}
	}
	if b.Status == BatchReceived {
		return &InvalidTransitionError{
			Entity: "laundry batch",
			ID:     b.ID,
			From:   string(BatchReceived),
			To:     string(BatchReceived),
			Reason: "batch was already received",
		}
	}
	if pending := b.UnadjudicatedItems(); len(pending) > 0 && !override {
		return &ValidationError{
			Field:  "items",
			Reason: "unadjudicated items require an explicit override: " + strings.Join(pending, ", "),
		}
	}
	b.Status = BatchReceived
	b.ReceivedBy = receivedBy
	b.ReceivedAt = &now
	return nil
}
