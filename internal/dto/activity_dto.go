package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// ActivityListRequest filters audit trail listings.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	UserID     uint
	Action     string
	EntityType string
}

// ActivityResponse serializes one audit trail entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	UserID     uint                   `json:"user_id"`
	Role       string                 `json:"role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Details    string                 `json:"details"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a paginated audit trail.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Role:       entry.Role.String(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
