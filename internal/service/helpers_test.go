package service

import (
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/copo-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Subject{},
		&models.SubjectAssignment{},
		&models.CourseOutcome{},
		&models.ProgramOutcome{},
		&models.CoPOMapping{},
		&models.CoursePlan{},
		&models.DirectAssessment{},
		&models.StudentAssessmentMarks{},
		&models.IndirectAssessment{},
		&models.StudentResponse{},
		&models.Attainment{},
		&models.SystemSetting{},
		&models.UploadRecord{},
		&models.Notification{},
		&models.ActivityLog{},
	))

	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func uintPointer(v uint) *uint {
	return &v
}
