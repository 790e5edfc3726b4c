package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

type storageStub struct {
	uploaded bytes.Buffer
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + name, nil
}

func newSettingFixture(t *testing.T, maxUploadBytes int64) SettingService {
	t.Helper()

	db := newTestDB(t)
	return NewSettingService(
		repository.NewSettingRepository(db),
		repository.NewUploadRepository(db),
		&storageStub{},
		maxUploadBytes,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestPolicyDefaults(t *testing.T) {
	svc := newSettingFixture(t, 0)

	policy, err := svc.Policy(context.Background())
	require.NoError(t, err)
	require.Equal(t, 60.0, policy.Threshold)
	require.Equal(t, 80.0, policy.DirectWeight)
	require.Equal(t, 20.0, policy.IndirectWeight)
}

func TestUpsertValidatesThreshold(t *testing.T) {
	svc := newSettingFixture(t, 0)
	ctx := context.Background()
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	for _, value := range []string{"0", "101", "not-a-number"} {
		_, err := svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
			Key:   models.SettingAttainmentThreshold,
			Value: value,
		})
		require.ErrorIs(t, err, ErrInvalidInput, "value %q", value)
	}

	_, err := svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingAttainmentThreshold,
		Value: "70",
	})
	require.NoError(t, err)

	policy, err := svc.Policy(ctx)
	require.NoError(t, err)
	require.Equal(t, 70.0, policy.Threshold)
}

func TestUpsertKeepsWeightsComplementary(t *testing.T) {
	svc := newSettingFixture(t, 0)
	ctx := context.Background()
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	// The stored indirect weight defaults to 20, so 70 would leave a gap.
	_, err := svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingDirectAttainmentWeight,
		Value: "70",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingIndirectWeight,
		Value: "30",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingIndirectWeight,
		Value: "20",
	})
	require.NoError(t, err)

	_, err = svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingDirectAttainmentWeight,
		Value: "80",
	})
	require.NoError(t, err)

}

func TestUpsertWeightsToleratesFloatRounding(t *testing.T) {
	ctx := context.Background()
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	db := newTestDB(t)
	svc := NewSettingService(
		repository.NewSettingRepository(db),
		repository.NewUploadRepository(db),
		&storageStub{},
		0,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)

	// 33.3+66.7 overshoots 100 by a few ulps in float64.
	require.NoError(t, db.Create(&models.SystemSetting{
		Key:       models.SettingDirectAttainmentWeight,
		Value:     "33.3",
		UpdatedBy: admin.ID,
	}).Error)

	_, err := svc.Upsert(ctx, admin, dto.SettingUpsertRequest{
		Key:   models.SettingIndirectWeight,
		Value: "66.7",
	})
	require.NoError(t, err)

	policy, err := svc.Policy(ctx)
	require.NoError(t, err)
	require.InDelta(t, 100.0, policy.DirectWeight+policy.IndirectWeight, 1e-6)
}

func TestUploadLogoValidation(t *testing.T) {
	svc := newSettingFixture(t, 1024)
	ctx := context.Background()
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	oversized := buildFileHeader(t, "big.png", bytes.Repeat([]byte("a"), 4096))
	_, err := svc.UploadLogo(ctx, admin, oversized)
	require.ErrorIs(t, err, ErrInvalidInput)

	notAnImage := buildFileHeader(t, "notes.txt", []byte("plain text"))
	_, err = svc.UploadLogo(ctx, admin, notAnImage)
	require.ErrorIs(t, err, ErrInvalidInput)

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	logo := buildFileHeader(t, "logo.png", pngHeader)
	resp, err := svc.UploadLogo(ctx, admin, logo)
	require.NoError(t, err)
	require.Contains(t, resp.URL, "logo.png")
	require.Equal(t, "image/png", resp.MimeType)

	setting, err := svc.Get(ctx, models.SettingLogoURL)
	require.NoError(t, err)
	require.Equal(t, resp.URL, setting.Value)
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
