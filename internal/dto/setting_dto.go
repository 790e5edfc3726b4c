package dto

import (
	"time"

	"github.com/noah-isme/copo-api/internal/models"
)

// SettingUpsertRequest writes one key-value setting.
type SettingUpsertRequest struct {
	Key   string `json:"key" validate:"required,min=2,max=64"`
	Value string `json:"value" validate:"required"`
}

// SettingResponse serializes one setting row.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy uint      `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSettingResponse converts a setting model into a DTO.
func NewSettingResponse(setting models.SystemSetting) SettingResponse {
	return SettingResponse{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedBy: setting.UpdatedBy,
		UpdatedAt: setting.UpdatedAt,
	}
}

// LogoUploadResponse serializes the stored branding asset.
type LogoUploadResponse struct {
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}
