package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of actor roles known to the system.
type Role string

// Supported roles.
const (
	RoleAdmin   Role = "admin"
	RoleHOD     Role = "hod"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole normalizes and validates a role string.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// User represents an authenticated actor. Admins and HODs may exist
// without a department; faculty and students are expected to carry one.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	DepartmentID *uint     `json:"department_id"`
	Phone        string    `gorm:"size:32" json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
