package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/openedu/school-api/internal/config"
	"github.com/openedu/school-api/internal/handler"
	"github.com/openedu/school-api/internal/middleware"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	GradeHandler      *handler.GradeHandler
	SubjectHandler    *handler.SubjectHandler
	ClassHandler      *handler.ClassHandler
	EnrollmentHandler *handler.EnrollmentHandler
	UnitHandler       *handler.UnitHandler
	LessonHandler     *handler.LessonHandler
	AssetHandler      *handler.AssetHandler
	AssignmentHandler *handler.AssignmentHandler
	QuestionHandler   *handler.QuestionHandler
	SubmissionHandler *handler.SubmissionHandler
	ReportHandler     *handler.ReportHandler
	CodeHandler       *handler.CodeHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
//
// Reads are open to every authenticated user. Academic structure and user
// management are admin operations, content and assessment authoring is open
// to teachers as well. Submitting and listing one's own submissions are open
// to any authenticated caller since the identity comes from the token, while
// code redemption stays student-only.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute)))
	}

	authed := api.Group("", jwtMiddleware)

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterMe(authed.Group("/users"))
		deps.UserHandler.RegisterAdmin(authed.Group("/users", adminOnly))
	}

	if deps.GradeHandler != nil {
		deps.GradeHandler.RegisterRead(authed.Group("/grades"))
		deps.GradeHandler.RegisterWrite(authed.Group("/grades", adminOnly))
	}
	if deps.SubjectHandler != nil {
		deps.SubjectHandler.RegisterRead(authed.Group("/subjects"))
		deps.SubjectHandler.RegisterWrite(authed.Group("/subjects", adminOnly))
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.RegisterRead(authed.Group("/classes"))
		deps.ClassHandler.RegisterWrite(authed.Group("/classes", adminOnly))
	}
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.RegisterRead(authed.Group("/enrollments"))
		deps.EnrollmentHandler.RegisterWrite(authed.Group("/enrollments", adminOnly))
	}

	if deps.UnitHandler != nil {
		deps.UnitHandler.RegisterRead(authed.Group("/units"))
		deps.UnitHandler.RegisterWrite(authed.Group("/units", staffOnly))
	}
	if deps.LessonHandler != nil {
		deps.LessonHandler.RegisterRead(authed.Group("/lessons"))
		deps.LessonHandler.RegisterWrite(authed.Group("/lessons", staffOnly))
	}
	if deps.AssetHandler != nil {
		deps.AssetHandler.RegisterRead(authed.Group("/assets"))
		deps.AssetHandler.RegisterWrite(authed.Group("/assets", staffOnly))
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.RegisterRead(authed.Group("/assignments"))
		deps.AssignmentHandler.RegisterWrite(authed.Group("/assignments", staffOnly))
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.RegisterRead(authed.Group("/questions"))
		deps.QuestionHandler.RegisterWrite(authed.Group("/questions", staffOnly))
	}

	if deps.SubmissionHandler != nil {
		submissions := authed.Group("/submissions")
		deps.SubmissionHandler.RegisterSelf(submissions)
		deps.SubmissionHandler.RegisterStaff(submissions.Group("", staffOnly))
		deps.SubmissionHandler.RegisterShared(submissions)
	}

	if deps.ReportHandler != nil {
		reports := authed.Group("/reports")
		deps.ReportHandler.RegisterStaff(reports.Group("", staffOnly))
		deps.ReportHandler.Register(reports)
	}

	if deps.CodeHandler != nil {
		codes := authed.Group("/codes")
		deps.CodeHandler.RegisterStaff(codes.Group("", staffOnly))
		deps.CodeHandler.RegisterStudent(codes.Group("", studentOnly))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(authed.Group("/seed", adminOnly))
	}
}
