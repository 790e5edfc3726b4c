package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/observability"
	"github.com/noah-isme/copo-api/internal/repository"
)

// Policy defaults used until an admin tunes them.
const (
	defaultThreshold      = 60.0
	defaultDirectWeight   = 80.0
	defaultIndirectWeight = 20.0
)

// weightSumTolerance absorbs the representation error of pairs like
// 33.3 and 66.7 when checking that the weights sum to 100.
const weightSumTolerance = 1e-6

// FileStorage pushes an asset to external storage and returns its URL.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SettingService manages the key-value settings table and site branding.
type SettingService interface {
	PolicyProvider

	Get(ctx context.Context, key string) (dto.SettingResponse, error)
	List(ctx context.Context) ([]dto.SettingResponse, error)
	Upsert(ctx context.Context, actor Actor, req dto.SettingUpsertRequest) (dto.SettingResponse, error)
	UploadLogo(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.LogoUploadResponse, error)
}

type settingService struct {
	settings  repository.SettingRepository
	uploads   repository.UploadRepository
	storage   FileStorage
	maxBytes  int64
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSettingService constructs the setting service.
func NewSettingService(
	settings repository.SettingRepository,
	uploads repository.UploadRepository,
	storage FileStorage,
	maxUploadBytes int64,
	validate *validator.Validate,
	logger zerolog.Logger,
) SettingService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 2 << 20
	}
	return &settingService{
		settings:  settings,
		uploads:   uploads,
		storage:   storage,
		maxBytes:  maxUploadBytes,
		validator: validate,
		logger:    logger.With().Str("component", "setting_service").Logger(),
	}
}

func (s *settingService) Get(ctx context.Context, key string) (dto.SettingResponse, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return dto.SettingResponse{}, mapNotFound(err)
	}
	return dto.NewSettingResponse(setting), nil
}

func (s *settingService) List(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		responses = append(responses, dto.NewSettingResponse(setting))
	}
	return responses, nil
}

func (s *settingService) Upsert(ctx context.Context, actor Actor, req dto.SettingUpsertRequest) (dto.SettingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SettingResponse{}, err
	}

	key := strings.TrimSpace(req.Key)
	value := strings.TrimSpace(req.Value)

	if err := s.checkValue(ctx, key, value); err != nil {
		return dto.SettingResponse{}, err
	}

	setting := models.SystemSetting{
		Key:       key,
		Value:     value,
		UpdatedBy: actor.ID,
	}

	if err := s.settings.Upsert(ctx, &setting); err != nil {
		return dto.SettingResponse{}, err
	}

	s.logger.Info().Str("key", key).Uint("updated_by", actor.ID).Msg("setting updated")
	return dto.NewSettingResponse(setting), nil
}

func (s *settingService) UploadLogo(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.LogoUploadResponse, error) {
	if file == nil {
		return dto.LogoUploadResponse{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	if file.Size > s.maxBytes {
		observability.UploadRejected().WithLabelValues("too_large").Inc()
		return dto.LogoUploadResponse{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.maxBytes)
	}

	source, err := file.Open()
	if err != nil {
		return dto.LogoUploadResponse{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer source.Close()

	content, err := io.ReadAll(io.LimitReader(source, s.maxBytes+1))
	if err != nil {
		return dto.LogoUploadResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxBytes {
		observability.UploadRejected().WithLabelValues("too_large").Inc()
		return dto.LogoUploadResponse{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, s.maxBytes)
	}

	detected := mimetype.Detect(content)
	if !strings.HasPrefix(detected.String(), "image/") {
		observability.UploadRejected().WithLabelValues("not_image").Inc()
		return dto.LogoUploadResponse{}, fmt.Errorf("%w: %s is not an image", ErrInvalidInput, detected.String())
	}

	url, err := s.storage.Upload(ctx, file.Filename, bytes.NewReader(content))
	if err != nil {
		return dto.LogoUploadResponse{}, err
	}

	checksum := sha256.Sum256(content)
	userID := actor.ID
	record := models.UploadRecord{
		FileName:  file.Filename,
		URL:       url,
		MimeType:  detected.String(),
		SizeBytes: int64(len(content)),
		Checksum:  hex.EncodeToString(checksum[:]),
		UserID:    &userID,
	}
	if err := s.uploads.Create(ctx, &record); err != nil {
		return dto.LogoUploadResponse{}, err
	}

	setting := models.SystemSetting{
		Key:       models.SettingLogoURL,
		Value:     url,
		UpdatedBy: actor.ID,
	}
	if err := s.settings.Upsert(ctx, &setting); err != nil {
		return dto.LogoUploadResponse{}, err
	}

	s.logger.Info().Str("url", url).Msg("site logo replaced")
	return dto.LogoUploadResponse{
		URL:       url,
		FileName:  file.Filename,
		MimeType:  detected.String(),
		SizeBytes: int64(len(content)),
	}, nil
}

// Policy resolves attainment tunables, falling back to defaults for
// keys that were never set.
func (s *settingService) Policy(ctx context.Context) (AttainmentPolicy, error) {
	threshold, err := s.floatSetting(ctx, models.SettingAttainmentThreshold, defaultThreshold)
	if err != nil {
		return AttainmentPolicy{}, err
	}
	direct, err := s.floatSetting(ctx, models.SettingDirectAttainmentWeight, defaultDirectWeight)
	if err != nil {
		return AttainmentPolicy{}, err
	}
	indirect, err := s.floatSetting(ctx, models.SettingIndirectWeight, defaultIndirectWeight)
	if err != nil {
		return AttainmentPolicy{}, err
	}

	return AttainmentPolicy{
		Threshold:      threshold,
		DirectWeight:   direct,
		IndirectWeight: indirect,
	}, nil
}

func (s *settingService) floatSetting(ctx context.Context, key string, fallback float64) (float64, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fallback, nil
		}
		return 0, err
	}

	value, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		s.logger.Warn().Str("key", key).Str("value", setting.Value).Msg("ignoring malformed setting")
		return fallback, nil
	}
	return value, nil
}

// checkValue enforces the domain rules of well-known keys. Unknown keys
// are stored as-is.
func (s *settingService) checkValue(ctx context.Context, key, value string) error {
	switch key {
	case models.SettingAttainmentThreshold:
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil || threshold < 1 || threshold > 100 {
			return fmt.Errorf("%w: threshold must be a number between 1 and 100", ErrInvalidInput)
		}
	case models.SettingDirectAttainmentWeight:
		return s.checkWeightPair(ctx, value, models.SettingIndirectWeight, defaultIndirectWeight)
	case models.SettingIndirectWeight:
		return s.checkWeightPair(ctx, value, models.SettingDirectAttainmentWeight, defaultDirectWeight)
	}
	return nil
}

// checkWeightPair verifies the direct and indirect weights still sum to
// exactly 100 after this write.
func (s *settingService) checkWeightPair(ctx context.Context, value, partnerKey string, partnerDefault float64) error {
	weight, err := strconv.ParseFloat(value, 64)
	if err != nil || weight < 0 || weight > 100 {
		return fmt.Errorf("%w: weight must be a number between 0 and 100", ErrInvalidInput)
	}

	partner, err := s.floatSetting(ctx, partnerKey, partnerDefault)
	if err != nil {
		return err
	}

	if math.Abs(weight+partner-100) > weightSumTolerance {
		return fmt.Errorf("%w: direct and indirect weights must sum to 100, got %.2f", ErrInvalidInput, weight+partner)
	}
	return nil
}
