package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleIntern     UserRole = "intern"
)

// AllRoles lists every role in display order.
var AllRoles = []UserRole{RoleAdmin, RoleSupervisor, RoleIntern}

// ParseRole converts a raw form or database value into a UserRole.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(raw)
	return role, role.Valid()
}

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleIntern:
		return true
	}
	return false
}

// RequiresApproval reports whether new accounts with this role start unapproved.
func (r UserRole) RequiresApproval() bool {
	switch r {
	case RoleIntern:
		return true
	case RoleAdmin, RoleSupervisor:
		return false
	}
	return true
}

func (r UserRole) String() string {
	return string(r)
}

// Title returns the capitalised role name used in page headings.
func (r UserRole) Title() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleSupervisor:
		return "Supervisor"
	case RoleIntern:
		return "Intern"
	}
	return string(r)
}

type User struct {
	ID           int64    `json:"id" db:"id" gorm:"primaryKey"`
	Name         string   `json:"name" db:"name" gorm:"not null;size:100"`
	Email        string   `json:"email" db:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" db:"password_hash" gorm:"not null;size:255"`
	Role         UserRole `json:"role" db:"role" gorm:"not null;size:20;index"`

	// Status
	IsApproved bool `json:"is_approved" db:"is_approved" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ApprovedForLogin reports whether the approval gate lets this account sign in.
// Only interns are gated; other roles are treated as always approved.
func (u *User) ApprovedForLogin() bool {
	switch u.Role {
	case RoleIntern:
		return u.IsApproved
	case RoleAdmin, RoleSupervisor:
		return true
	}
	return false
}
