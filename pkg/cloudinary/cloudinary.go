// Package cloudinary stores institution branding assets, currently
// just the site logo uploaded through the settings API.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config carries the Cloudinary account credentials and the folder
// under which assets are filed.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service uploads branding assets and hands back their public URLs.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs the service, failing fast on incomplete credentials.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: client,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload pushes the asset and returns its secure URL. The public id is
// derived from the original filename with an upload timestamp appended,
// so re-uploading a logo never overwrites the previous one.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	result, err := s.client.Upload.Upload(ctx, reader, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     assetPublicID(name, time.Now()),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload asset: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("branding asset uploaded")
	return result.SecureURL, nil
}

// assetPublicID slugs the filename down to [a-zA-Z0-9-] and suffixes
// the upload time for uniqueness.
func assetPublicID(name string, uploadedAt time.Time) string {
	slug := strings.TrimSuffix(name, filepath.Ext(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)

	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "asset"
	}

	return fmt.Sprintf("%s-%d", slug, uploadedAt.Unix())
}
