package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("conflicting record exists")
	ErrInvalidInput    = errors.New("invalid input")
)

// Actor is the authenticated principal attached to a request.
type Actor struct {
	ID           uint
	Role         models.Role
	DepartmentID *uint
}

// mapNotFound converts gorm's record-not-found into the service sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
