package models

import "time"

// Notification is a per-user message, optionally linked to an entity.
type Notification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"size:32;not null;default:generic" json:"type"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	EntityType string    `gorm:"size:64" json:"entity_type"`
	EntityID   *uint     `json:"entity_id"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
