package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// NotificationCreateRequest captures the payload to publish a notification.
type NotificationCreateRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	Type       string `json:"type" validate:"required,min=2,max=32"`
	Message    string `json:"message" validate:"required,min=1"`
	EntityType string `json:"entity_type" validate:"omitempty,max=64"`
	EntityID   *uint  `json:"entity_id"`
}

// NotificationResponse serializes a notification.
type NotificationResponse struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   *uint     `json:"entity_id,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         notification.ID,
		UserID:     notification.UserID,
		Type:       notification.Type,
		Message:    notification.Message,
		EntityType: notification.EntityType,
		EntityID:   notification.EntityID,
		IsRead:     notification.IsRead,
		CreatedAt:  notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of notification models.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
