package models

import "strings"

// Contract statuses.
const (
	ContractActive   = "Active"
	ContractInactive = "Inactive"
)

// Contract is a sanctioned carriage rate for a contractor on one route.
// Its natural key is contractor name + from + to.
type Contract struct {
	ContractID     int64   `json:"contract_id"`
	SanctionedNo   string  `json:"sanctioned_no"`
	ContractorID   int64   `json:"contractor_id"`
	ContractorName string  `json:"contractor_name"`
	FromLocation   string  `json:"from_location"`
	ToLocation     string  `json:"to_location"`
	RatePerKg      float64 `json:"rate_per_kg"`
	EffectiveDate  string  `json:"effective_date"`
	Status         string  `json:"status"`
}

// Role is a user's permission level.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleUser     Role = "User"
	RoleViewer   Role = "Viewer"
	RoleAGOffice Role = "AG Office"
)

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleUser, RoleViewer, RoleAGOffice} {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// User is an application account. Its natural key is the lower-cased
// username.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}
