package cloudinary

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsIncompleteCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo", APIKey: "key"}, zerolog.Nop())
	require.Error(t, err)
}

func TestAssetPublicIDSlugsFilenames(t *testing.T) {
	at := time.Unix(1700000000, 0)

	require.Equal(t, "college-logo-2026-1700000000", assetPublicID("college logo 2026.png", at))
	require.Equal(t, "asset-1700000000", assetPublicID("___.png", at))
	require.Equal(t, "logo-1700000000", assetPublicID("logo", at))
}
