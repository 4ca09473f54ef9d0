package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdministrator UserRole = "ADMINISTRATOR"
	RoleStaff         UserRole = "STAFF"
	RoleStudent       UserRole = "STUDENT"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdministrator, RoleStaff, RoleStudent:
		return true
	}
	return false
}

// UserAccess is the administrative access state of an account, independent
// of its record status.
type UserAccess string

const (
	AccessGranted   UserAccess = "GRANTED"
	AccessSuspended UserAccess = "SUSPENDED"
	AccessRevoked   UserAccess = "REVOKED"
)

// User represents a center staff/admin/student account. The core only reads it.
type User struct {
	ID           string     `db:"id" json:"id"`
	CenterID     string     `db:"center_id" json:"center_id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Access       UserAccess `db:"access" json:"access"`
	Status       Status     `db:"status" json:"status"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
