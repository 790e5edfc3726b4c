package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// DepartmentCreateRequest captures the payload to create a department.
type DepartmentCreateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	HODID *uint  `json:"hod_id"`
}

// DepartmentUpdateRequest captures partial department updates.
type DepartmentUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	HODID *uint   `json:"hod_id"`
}

// DepartmentResponse serializes department data.
type DepartmentResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	HODID     *uint     `json:"hod_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDepartmentResponse converts a department model into a DTO.
func NewDepartmentResponse(department models.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:        department.ID,
		Name:      department.Name,
		HODID:     department.HODID,
		CreatedAt: department.CreatedAt,
		UpdatedAt: department.UpdatedAt,
	}
}
