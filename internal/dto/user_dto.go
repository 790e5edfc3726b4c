package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// RegisterRequest captures the payload to create a new actor.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=64"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required,min=2"`
	Role         string `json:"role" validate:"required,oneof=admin hod faculty student"`
	DepartmentID *uint  `json:"department_id"`
	Phone        string `json:"phone" validate:"omitempty,min=8,max=32"`
}

// LoginRequest captures credentials for session login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest asks for an OTP to be delivered out of band.
type PasswordResetRequest struct {
	Username string `json:"username" validate:"required"`
}

// PasswordResetConfirm carries the OTP and replacement password.
type PasswordResetConfirm struct {
	Username    string `json:"username" validate:"required"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserUpdateRequest captures partial profile updates.
type UserUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2"`
	Phone        *string `json:"phone" validate:"omitempty,min=8,max=32"`
	DepartmentID *uint   `json:"department_id"`
	Password     *string `json:"password" validate:"omitempty,min=6"`
}

// UserResponse serializes an actor without credential material.
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	DepartmentID *uint     `json:"department_id"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserListResponse wraps a paginated user listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Role:         user.Role.String(),
		DepartmentID: user.DepartmentID,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt,
	}
}
