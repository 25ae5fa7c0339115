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

	"github.com/openedu/school-api/internal/config"
	"github.com/openedu/school-api/internal/database"
	"github.com/openedu/school-api/internal/handler"
	"github.com/openedu/school-api/internal/middleware"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/repository"
	"github.com/openedu/school-api/internal/router"
	"github.com/openedu/school-api/internal/service"
	cloud "github.com/openedu/school-api/pkg/cloudinary"
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

	err = db.AutoMigrate(
		&models.User{},
		&models.Grade{},
		&models.Subject{},
		&models.Class{},
		&models.Enrollment{},
		&models.Unit{},
		&models.Lesson{},
		&models.ContentAsset{},
		&models.Assignment{},
		&models.Question{},
		&models.Submission{},
		&models.GradeItem{},
		&models.RedeemCode{},
		&models.SubjectEnrollment{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, report caching disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, grading events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	var uploader service.FileStorage
	if cfg.CloudCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudCloudName,
			APIKey:    cfg.CloudAPIKey,
			APISecret: cfg.CloudAPISecret,
			Folder:    cfg.CloudFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeItemRepo := repository.NewGradeItemRepository(db)
	codeRepo := repository.NewCodeRepository(db)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	gradeService := service.NewGradeService(gradeRepo, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, validate, logger)
	classService := service.NewClassService(classRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, validate, logger)
	unitService := service.NewUnitService(unitRepo, validate, logger)
	lessonService := service.NewLessonService(lessonRepo, validate, logger)
	assetService := service.NewAssetService(assetRepo, uploader, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	questionService := service.NewQuestionService(questionRepo, validate, logger)

	var publisher service.EventPublisher
	if natsConn != nil {
		publisher = natsConn
	}
	reportService := service.NewReportService(userRepo, enrollmentRepo, assignmentRepo, submissionRepo, redisClient, cfg.ReportCacheTTL, logger)
	submissionService := service.NewSubmissionService(submissionRepo, gradeItemRepo, publisher, reportService, validate, logger)
	codeService := service.NewCodeService(codeRepo, subjectRepo, validate, logger)
	seedService := service.NewSeedService(db, logger)

	if cfg.SeedOnStartup {
		if err := seedService.Run(context.Background()); err != nil {
			log.Fatalf("failed to seed baseline data: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		GradeHandler:      handler.NewGradeHandler(gradeService, logger),
		SubjectHandler:    handler.NewSubjectHandler(subjectService, logger),
		ClassHandler:      handler.NewClassHandler(classService, logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		UnitHandler:       handler.NewUnitHandler(unitService, logger),
		LessonHandler:     handler.NewLessonHandler(lessonService, logger),
		AssetHandler:      handler.NewAssetHandler(assetService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		QuestionHandler:   handler.NewQuestionHandler(questionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		CodeHandler:       handler.NewCodeHandler(codeService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Msg("server started")
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
