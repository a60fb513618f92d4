package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// Department groups users for rollups and the department_avg dimension.
type Department string

const (
	DepartmentHardware  Department = "hardware"
	DepartmentSoftware  Department = "software"
	DepartmentMarketing Department = "marketing"
)

// Departments lists every department in report order.
var Departments = []Department{DepartmentHardware, DepartmentSoftware, DepartmentMarketing}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// User represents a person taking part in OKR scoring.
type User struct {
	ID         string     `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	Name       string     `db:"name" json:"name"`
	Department Department `db:"department" json:"department"`
	Role       UserRole   `db:"role" json:"role"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
