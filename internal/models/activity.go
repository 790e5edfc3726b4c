package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures one auditable mutation per row. Append-only.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	Role       Role              `gorm:"size:16;not null" json:"role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Details    string            `gorm:"size:512" json:"details"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
