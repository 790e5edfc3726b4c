package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func TestSessionLifecycle(t *testing.T) {
	mini, client := newRedis(t)
	store := NewStore(client, time.Hour)
	ctx := context.Background()

	departmentID := uint(3)
	id, err := store.Create(ctx, Session{UserID: 7, Role: models.RoleFaculty, DepartmentID: &departmentID})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint(7), sess.UserID)
	require.Equal(t, models.RoleFaculty, sess.Role)
	require.Equal(t, uint(3), *sess.DepartmentID)

	require.NoError(t, store.Destroy(ctx, id))
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	// Sessions expire with their TTL.
	id, err = store.Create(ctx, Session{UserID: 8, Role: models.RoleStudent})
	require.NoError(t, err)
	mini.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionGetEmptyID(t *testing.T) {
	_, client := newRedis(t)
	store := NewStore(client, time.Hour)

	_, err := store.Get(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOTPIssueVerifyConsume(t *testing.T) {
	mini, client := newRedis(t)
	otps := NewOTPStore(client, 10*time.Minute)
	ctx := context.Background()

	code, err := otps.Issue(ctx, 7)
	require.NoError(t, err)
	require.Len(t, code, 6)

	// A wrong code leaves the pending one intact.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	ok, err := otps.Verify(ctx, 7, wrong)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = otps.Verify(ctx, 7, code)
	require.NoError(t, err)
	require.True(t, ok)

	// Consumed on success.
	ok, err = otps.Verify(ctx, 7, code)
	require.NoError(t, err)
	require.False(t, ok)

	// Reissuing replaces the pending code.
	first, err := otps.Issue(ctx, 9)
	require.NoError(t, err)
	second, err := otps.Issue(ctx, 9)
	require.NoError(t, err)
	if first != second {
		ok, err = otps.Verify(ctx, 9, first)
		require.NoError(t, err)
		require.False(t, ok)
	}

	// Codes expire with their TTL.
	code, err = otps.Issue(ctx, 11)
	require.NoError(t, err)
	mini.FastForward(time.Hour)
	ok, err = otps.Verify(ctx, 11, code)
	require.NoError(t, err)
	require.False(t, ok)
}
