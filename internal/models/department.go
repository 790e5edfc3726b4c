package models

import "time"

// Department groups subjects, program outcomes and their faculty.
// HODID is a weak reference to a User; the unique index keeps one
// department per head even under concurrent writes.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	HODID     *uint     `gorm:"uniqueIndex" json:"hod_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
