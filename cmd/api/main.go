package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/config"
	"github.com/noah-isme/copo-api/internal/database"
	"github.com/noah-isme/copo-api/internal/handler"
	"github.com/noah-isme/copo-api/internal/middleware"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/repository"
	"github.com/noah-isme/copo-api/internal/router"
	"github.com/noah-isme/copo-api/internal/service"
	"github.com/noah-isme/copo-api/internal/session"
	cloud "github.com/noah-isme/copo-api/pkg/cloudinary"
	"github.com/noah-isme/copo-api/pkg/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
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
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notification fan-out runs on redis only")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	messenger, err := whatsapp.New(whatsapp.Config{
		APIURL: cfg.WhatsAppBaseURL,
		Token:  cfg.WhatsAppToken,
		Sender: cfg.WhatsAppSender,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create whatsapp client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	otps := session.NewOTPStore(redisClient, cfg.OTPTTL)

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	assignmentRepo := repository.NewSubjectAssignmentRepository(db)
	courseOutcomeRepo := repository.NewCourseOutcomeRepository(db)
	programOutcomeRepo := repository.NewProgramOutcomeRepository(db)
	mappingRepo := repository.NewCoPOMappingRepository(db)
	coursePlanRepo := repository.NewCoursePlanRepository(db)
	assessmentRepo := repository.NewDirectAssessmentRepository(db)
	marksRepo := repository.NewMarksRepository(db)
	surveyRepo := repository.NewIndirectAssessmentRepository(db)
	responseRepo := repository.NewStudentResponseRepository(db)
	attainmentRepo := repository.NewAttainmentRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, "copo", natsConn, validate, logger)
	settingService := service.NewSettingService(settingRepo, uploadRepo, uploader, int64(cfg.UploadMaxSizeMB)<<20, validate, logger)
	attainmentService := service.NewAttainmentService(
		courseOutcomeRepo,
		programOutcomeRepo,
		mappingRepo,
		assessmentRepo,
		marksRepo,
		surveyRepo,
		responseRepo,
		subjectRepo,
		attainmentRepo,
		settingService,
		redisClient,
		cfg.AttainmentCacheTTL,
		logger,
	)

	authService := service.NewAuthService(userRepo, sessions, otps, messenger, validate, logger)
	userService := service.NewUserService(userRepo, departmentRepo, validate, logger)
	departmentService := service.NewDepartmentService(departmentRepo, subjectRepo, userRepo, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, assignmentRepo, userRepo, departmentRepo, notificationService, validate, logger)
	outcomeService := service.NewOutcomeService(courseOutcomeRepo, programOutcomeRepo, mappingRepo, subjectRepo, attainmentService, validate, logger)
	coursePlanService := service.NewCoursePlanService(coursePlanRepo, subjectRepo, assignmentRepo, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, marksRepo, surveyRepo, responseRepo, subjectRepo, assignmentRepo, attainmentService, validate, logger)

	authHandler := handler.NewAuthHandler(authService, cfg.SessionCookieName, cfg.SessionTTL, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	departmentHandler := handler.NewDepartmentHandler(departmentService, logger)
	subjectHandler := handler.NewSubjectHandler(subjectService, logger)
	outcomeHandler := handler.NewOutcomeHandler(outcomeService, logger)
	coursePlanHandler := handler.NewCoursePlanHandler(coursePlanService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, logger)
	surveyHandler := handler.NewSurveyHandler(assessmentService, logger)
	attainmentHandler := handler.NewAttainmentHandler(attainmentService, logger)
	settingHandler := handler.NewSettingHandler(settingService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, time.Minute)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		Sessions:            sessions,
		AuditRecorder:       activityService,
		Logger:              logger,
		AuthHandler:         authHandler,
		UserHandler:         userHandler,
		DepartmentHandler:   departmentHandler,
		SubjectHandler:      subjectHandler,
		OutcomeHandler:      outcomeHandler,
		CoursePlanHandler:   coursePlanHandler,
		AssessmentHandler:   assessmentHandler,
		SurveyHandler:       surveyHandler,
		AttainmentHandler:   attainmentHandler,
		SettingHandler:      settingHandler,
		NotificationHandler: notificationHandler,
		ActivityHandler:     activityHandler,
	})

	runCtx, stopSubscriptions := context.WithCancel(context.Background())
	defer stopSubscriptions()
	notificationService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
