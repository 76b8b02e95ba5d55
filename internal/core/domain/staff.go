package domain

import "time"

type StaffRole string

const (
	RoleAdmin StaffRole = "admin"
	RoleStaff StaffRole = "staff"
)

// Staff is a directory entry for a person who operates the system. Login
// credentials live with the identity provider, not here.
type Staff struct {
	ID        string    `json:"id"`
	LoginID   string    `json:"loginId"`
	Name      string    `json:"name"`
	Role      StaffRole `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewStaff(id, loginID, name string, role StaffRole, now time.Time) (*Staff, error) {
	if loginID == "" {
		return nil, &ValidationError{Field: "loginId", Reason: "must not be empty"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, &ValidationError{Field: "role", Reason: "must be admin or staff"}
	}
	return &Staff{
		ID:        id,
		LoginID:   loginID,
		Name:      name,
		Role:      role,
		CreatedAt: now,
	}, nil
}
