package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/copo-api/internal/dto"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
)

func TestActivityRecordMasksSensitiveMetadata(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), zerolog.Nop())
	ctx := context.Background()

	require.Error(t, svc.Record(ctx, models.ActivityLog{Action: "create", EntityType: "user"}))
	require.Error(t, svc.Record(ctx, models.ActivityLog{UserID: 1, EntityType: "user"}))

	require.NoError(t, svc.Record(ctx, models.ActivityLog{
		UserID:     1,
		Role:       models.RoleAdmin,
		Action:     "Update",
		EntityType: "User",
		Metadata: datatypes.JSONMap{
			"username":     "admin",
			"new_password": "hunter2",
			"reset_token":  "abc123",
		},
	}))

	result, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	entry := result.Items[0]
	require.Equal(t, "update", entry.Action)
	require.Equal(t, "user", entry.EntityType)
	require.Equal(t, "admin", entry.Metadata["username"])
	require.Equal(t, "***", entry.Metadata["new_password"])
	require.Equal(t, "***", entry.Metadata["reset_token"])
}

func TestActivityListFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityLogRepository(db), zerolog.Nop())
	ctx := context.Background()

	for _, entry := range []models.ActivityLog{
		{UserID: 1, Role: models.RoleAdmin, Action: "create", EntityType: "subject"},
		{UserID: 1, Role: models.RoleAdmin, Action: "delete", EntityType: "subject"},
		{UserID: 2, Role: models.RoleHOD, Action: "create", EntityType: "department"},
	} {
		require.NoError(t, svc.Record(ctx, entry))
	}

	byUser, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 10, UserID: 2})
	require.NoError(t, err)
	require.Len(t, byUser.Items, 1)
	require.Equal(t, "department", byUser.Items[0].EntityType)

	byAction, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 10, Action: "create"})
	require.NoError(t, err)
	require.Len(t, byAction.Items, 2)

	paged, err := svc.List(ctx, dto.ActivityListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, paged.Items, 2)
	require.Equal(t, int64(3), paged.Pagination.TotalItems)
	require.Equal(t, 2, paged.Pagination.TotalPages)
}
