package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/repository"
)

func newNotificationFixture(t *testing.T) NotificationService {
	t.Helper()

	db := newTestDB(t)
	return NewNotificationService(
		repository.NewNotificationRepository(db),
		newTestRedis(t),
		"copo",
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestNotificationPublishSanitizesAndStores(t *testing.T) {
	svc := newNotificationFixture(t)
	ctx := context.Background()

	entityID := uint(5)
	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:     7,
		Type:       "subject_assigned",
		Message:    `You teach <b>CS301</b><script>alert("x")</script>`,
		EntityType: "subject",
		EntityID:   &entityID,
	})
	require.NoError(t, err)
	require.NotContains(t, published.Message, "<script>")
	require.NotContains(t, published.Message, "<b>")
	require.Contains(t, published.Message, "CS301")

	// A payload that is all markup carries no message.
	_, err = svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  7,
		Type:    "subject_assigned",
		Message: `<script>alert("x")</script>`,
	})
	require.Error(t, err)

	list, err := svc.List(ctx, 7, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	unread, err := svc.CountUnread(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestNotificationMarkReadScopedToOwner(t *testing.T) {
	svc := newNotificationFixture(t)
	ctx := context.Background()

	published, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  7,
		Type:    "subject_assigned",
		Message: "You have been assigned to CS301",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, published.ID, 99)
	require.ErrorIs(t, err, ErrNotFound)

	read, err := svc.MarkRead(ctx, published.ID, 7)
	require.NoError(t, err)
	require.True(t, read.IsRead)

	unread, err := svc.CountUnread(ctx, 7)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationSubscribeReceivesLocalBroadcast(t *testing.T) {
	svc := newNotificationFixture(t)
	ctx := context.Background()

	channel, cleanup := svc.Subscribe(7)
	defer cleanup()

	_, err := svc.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  7,
		Type:    "subject_assigned",
		Message: "You have been assigned to CS301",
	})
	require.NoError(t, err)

	select {
	case received := <-channel:
		require.Equal(t, uint(7), received.UserID)
		require.Equal(t, "subject_assigned", received.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered to subscriber")
	}
}
