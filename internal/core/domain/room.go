package domain

type RoomStatus string

const (
	RoomVacant      RoomStatus = "vacant"
	RoomOccupied    RoomStatus = "occupied"
	RoomDirty       RoomStatus = "dirty"
	RoomMaintenance RoomStatus = "maintenance"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomVacant, RoomOccupied, RoomDirty, RoomMaintenance:
		return true
	}
	return false
}

// Room is keyed by its human-assigned room number. Rooms are created once at
// provisioning and never deleted; status is the only field that changes in
// normal operation.
//
// The occupied and dirty values survive for documents written by earlier
// deployments; no transition produces them anymore. A room enters
// maintenance only as a side effect of ticket creation, and leaves it only
// once no open ticket references it.
type Room struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	Floor  int        `json:"floor"`
	Status RoomStatus `json:"status"`
	HasKey bool       `json:"hasKey"`
}

// EnterMaintenance marks the room for maintenance. Valid from any state:
// an issue can be reported against an occupied room just as well as a
// vacant one.
func (r *Room) EnterMaintenance() {
	r.Status = RoomMaintenance
}

// ClearMaintenance returns the room to service. The caller is responsible
// for the cross-entity check that no open ticket still references the room.
func (r *Room) ClearMaintenance() error {
	if r.Status != RoomMaintenance {
		return &InvalidTransitionError{
			Entity: "room",
			ID:     r.ID,
			From:   string(r.Status),
			To:     string(RoomVacant),
			Reason: "room is not under maintenance",
		}
	}
	r.Status = RoomVacant
	return nil
}
