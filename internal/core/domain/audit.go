package domain

import "time"

// AuditAction is a closed enum: every accepted transition maps to exactly
// one of these, and an unknown value is a programming error, not input to
// handle gracefully.
type AuditAction string

const (
	ActionRoomUpdate      AuditAction = "ROOM_UPDATE"
	ActionTicketCreate    AuditAction = "TICKET_CREATE"
	ActionTicketResolve   AuditAction = "TICKET_RESOLVE"
	ActionRequestSend     AuditAction = "REQUEST_SEND"
	ActionRequestRespond  AuditAction = "REQUEST_RESPOND"
	ActionRequestComplete AuditAction = "REQUEST_COMPLETE"
	ActionLeaveApply      AuditAction = "LEAVE_APPLY"
	ActionLeaveDecide     AuditAction = "LEAVE_DECIDE"
	ActionLeaveDelete     AuditAction = "LEAVE_DELETE"
	ActionLaundrySent     AuditAction = "LAUNDRY_SENT"
	ActionLaundryReceived AuditAction = "LAUNDRY_RECEIVED"
	ActionStockUpdate     AuditAction = "STOCK_UPDATE"
	ActionStaffCreate     AuditAction = "STAFF_CREATE"
	ActionStaffDelete     AuditAction = "STAFF_DELETE"
)

func (a AuditAction) Known() bool {
	switch a {
	case ActionRoomUpdate, ActionTicketCreate, ActionTicketResolve,
		ActionRequestSend, ActionRequestRespond, ActionRequestComplete,
		ActionLeaveApply, ActionLeaveDecide, ActionLeaveDelete,
		ActionLaundrySent, ActionLaundryReceived,
		ActionStockUpdate, ActionStaffCreate, ActionStaffDelete:
		return true
	}
	return false
}

// AuditRecord is append-only: never mutated, never deleted.
type AuditRecord struct {
	ID        string      `json:"id"`
	Actor     string      `json:"actor"`
	Action    AuditAction `json:"actionType"`
	Details   string      `json:"details"`
	Timestamp time.Time   `json:"timestamp"`
}
