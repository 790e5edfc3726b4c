package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/copo-api/internal/config"
	"github.com/noah-isme/copo-api/internal/handler"
	"github.com/noah-isme/copo-api/internal/middleware"
	"github.com/noah-isme/copo-api/internal/models"
	"github.com/noah-isme/copo-api/internal/observability"
	"github.com/noah-isme/copo-api/internal/session"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Sessions            *session.Store
	AuditRecorder       middleware.AuditRecorder
	Logger              zerolog.Logger
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	DepartmentHandler   *handler.DepartmentHandler
	SubjectHandler      *handler.SubjectHandler
	OutcomeHandler      *handler.OutcomeHandler
	CoursePlanHandler   *handler.CoursePlanHandler
	AssessmentHandler   *handler.AssessmentHandler
	SurveyHandler       *handler.SurveyHandler
	AttainmentHandler   *handler.AttainmentHandler
	SettingHandler      *handler.SettingHandler
	NotificationHandler *handler.NotificationHandler
	ActivityHandler     *handler.ActivityHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	audit := func(entityType string) fiber.Handler {
		return middleware.AuditCRUD(entityType, deps.AuditRecorder, deps.Logger)
	}

	// Auth. Registration resolves the session when one exists so admins
	// and heads of department can create accounts; everything else on
	// the group is anonymous by design.
	authLimit := middleware.RateLimit("auth", 10, time.Minute)
	auth := api.Group("/auth", authLimit)
	deps.AuthHandler.Register(auth)

	signup := api.Group("/auth", authLimit,
		middleware.SessionOptional(deps.Sessions, cfg.SessionCookieName),
		audit("user"))
	deps.AuthHandler.RegisterSignup(signup)

	protected := middleware.SessionProtected(deps.Sessions, cfg.SessionCookieName)

	// Users.
	users := api.Group("/users", protected, audit("user"))
	deps.UserHandler.Register(users)
	deps.UserHandler.RegisterList(api.Group("/users", protected,
		middleware.RequireRole(models.RoleAdmin, models.RoleHOD)))
	deps.UserHandler.RegisterAdmin(api.Group("/users", protected,
		middleware.RequireRole(models.RoleAdmin), audit("user")))

	// Departments.
	deps.DepartmentHandler.Register(api.Group("/departments", protected))
	deps.DepartmentHandler.RegisterAdmin(api.Group("/departments", protected,
		middleware.RequireRole(models.RoleAdmin), audit("department")))

	// Subjects and faculty assignments.
	deps.SubjectHandler.Register(api.Group("/subjects", protected))
	deps.SubjectHandler.RegisterManage(api.Group("/subjects", protected,
		middleware.RequireRole(models.RoleAdmin, models.RoleHOD), audit("subject")))

	// Outcomes and CO-PO mappings.
	deps.OutcomeHandler.Register(api.Group("/outcomes", protected))
	deps.OutcomeHandler.RegisterManage(api.Group("/outcomes", protected,
		middleware.RequireRole(models.RoleAdmin, models.RoleHOD, models.RoleFaculty),
		audit("outcome")))

	// Course plans.
	deps.CoursePlanHandler.Register(api.Group("/course-plans", protected))
	deps.CoursePlanHandler.RegisterManage(api.Group("/course-plans", protected,
		middleware.RequireRole(models.RoleHOD, models.RoleFaculty),
		audit("course_plan")))

	// Direct assessments and marks.
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleHOD, models.RoleFaculty)
	deps.AssessmentHandler.Register(api.Group("/assessments", protected, staff))
	deps.AssessmentHandler.RegisterManage(api.Group("/assessments", protected, staff,
		audit("assessment")))

	// Indirect assessments (surveys) and student responses.
	deps.SurveyHandler.Register(api.Group("/surveys", protected))
	deps.SurveyHandler.RegisterManage(api.Group("/surveys", protected,
		middleware.RequireRole(models.RoleAdmin, models.RoleHOD), audit("survey")))
	deps.SurveyHandler.RegisterSubmit(api.Group("/surveys", protected,
		middleware.RequireRole(models.RoleStudent), audit("survey_response")))

	// Attainment reports.
	deps.AttainmentHandler.Register(api.Group("/attainment", protected, staff))

	// Settings and branding.
	deps.SettingHandler.Register(api.Group("/settings", protected))
	deps.SettingHandler.RegisterAdmin(api.Group("/settings", protected,
		middleware.RequireRole(models.RoleAdmin), audit("setting")))

	// Notifications.
	deps.NotificationHandler.Register(api.Group("/notifications", protected))

	// Audit trail.
	deps.ActivityHandler.Register(api.Group("/activity-logs", protected,
		middleware.RequireRole(models.RoleAdmin)))
}
