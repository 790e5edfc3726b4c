package models

import "time"

// Well-known setting keys.
const (
	SettingAttainmentThreshold    = "attainmentThreshold"
	SettingDirectAttainmentWeight = "directAttainmentWeight"
	SettingIndirectWeight         = "indirectAttainmentWeight"
	SettingLogoURL                = "logoUrl"
	SettingSiteTitle              = "siteTitle"
)

// SystemSetting is a generic key-value row used for tuning and branding.
type SystemSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:64;uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedBy uint      `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}
