package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/config"
	"github.com/openedu/school-api/internal/handler"
	"github.com/openedu/school-api/internal/middleware"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/repository"
	"github.com/openedu/school-api/internal/service"
)

const testJWTSecret = "router-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))

	hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:        "admin@school.local",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FirstName:    "Root",
		LastName:     "Admin",
		Locale:       "en",
		Active:       true,
	}).Error)

	logger := zerolog.Nop()
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

	cfg := config.Config{AppName: "School Platform API", AppEnv: "test", JWTSecret: testJWTSecret}
	reportService := service.NewReportService(userRepo, enrollmentRepo, assignmentRepo, submissionRepo, nil, 0, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	Register(app, cfg, Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(userRepo, validate, testJWTSecret, time.Hour, logger), logger),
		UserHandler:       handler.NewUserHandler(service.NewUserService(userRepo, validate, logger), logger),
		GradeHandler:      handler.NewGradeHandler(service.NewGradeService(gradeRepo, validate, logger), logger),
		SubjectHandler:    handler.NewSubjectHandler(service.NewSubjectService(subjectRepo, validate, logger), logger),
		ClassHandler:      handler.NewClassHandler(service.NewClassService(classRepo, validate, logger), logger),
		EnrollmentHandler: handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollmentRepo, validate, logger), logger),
		UnitHandler:       handler.NewUnitHandler(service.NewUnitService(unitRepo, validate, logger), logger),
		LessonHandler:     handler.NewLessonHandler(service.NewLessonService(lessonRepo, validate, logger), logger),
		AssetHandler:      handler.NewAssetHandler(service.NewAssetService(assetRepo, nil, validate, logger), logger),
		AssignmentHandler: handler.NewAssignmentHandler(service.NewAssignmentService(assignmentRepo, validate, logger), logger),
		QuestionHandler:   handler.NewQuestionHandler(service.NewQuestionService(questionRepo, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, gradeItemRepo, nil, reportService, validate, logger), logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		CodeHandler:       handler.NewCodeHandler(service.NewCodeService(codeRepo, subjectRepo, validate, logger), logger),
		SeedHandler:       handler.NewSeedHandler(service.NewSeedService(db, logger), logger),
		JWTMiddleware:     middleware.JWTProtected(testJWTSecret),
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func createEntity(t *testing.T, app *fiber.App, path, token string, payload interface{}) uint {
	t.Helper()
	resp, body := doJSON(t, app, "POST", path, token, payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "POST %s: %s", path, body.Message)

	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotZero(t, data.ID)
	return data.ID
}

func TestRouterGradingFlow(t *testing.T) {
	app := setupApp(t)

	adminToken := login(t, app, "admin@school.local", "ChangeMe123!")

	// Academic structure.
	gradeID := createEntity(t, app, "/api/v1/grades", adminToken, fiber.Map{"name": "Grade 7"})
	subjectID := createEntity(t, app, "/api/v1/subjects", adminToken, fiber.Map{"name": "Mathematics", "code": "MATH"})
	classID := createEntity(t, app, "/api/v1/classes", adminToken, fiber.Map{"name": "7A", "grade_id": gradeID})

	// Accounts.
	createEntity(t, app, "/api/v1/users", adminToken, fiber.Map{
		"email": "teacher@school.local", "password": "Secret123!", "role": "TEACHER",
		"first_name": "Tina", "last_name": "Teacher",
	})
	studentID := createEntity(t, app, "/api/v1/users", adminToken, fiber.Map{
		"email": "alice@school.local", "password": "Secret123!", "role": "STUDENT",
		"first_name": "Alice", "last_name": "Nguyen",
	})
	createEntity(t, app, "/api/v1/enrollments", adminToken, fiber.Map{"user_id": studentID, "class_id": classID})

	// Content authored by the teacher.
	teacherToken := login(t, app, "teacher@school.local", "Secret123!")
	unitID := createEntity(t, app, "/api/v1/units", teacherToken, fiber.Map{"subject_id": subjectID, "title": "Algebra"})
	lessonID := createEntity(t, app, "/api/v1/lessons", teacherToken, fiber.Map{"unit_id": unitID, "title": "Linear equations"})
	assignmentID := createEntity(t, app, "/api/v1/assignments", teacherToken, fiber.Map{
		"lesson_id": lessonID, "title": "Quiz 1", "kind": "QUIZ",
	})
	createEntity(t, app, "/api/v1/questions", teacherToken, fiber.Map{
		"assignment_id": assignmentID,
		"type":          "MCQ",
		"prompt":        "What is 2 + 2?",
		"options":       []string{"3", "4", "5"},
		"answer_key":    1,
	})

	// Student submits.
	studentToken := login(t, app, "alice@school.local", "Secret123!")
	submissionID := createEntity(t, app, "/api/v1/submissions", studentToken, fiber.Map{
		"assignment_id": assignmentID,
		"responses":     map[string]string{"1": "4"},
	})

	// A second submission for the same assignment conflicts.
	resp, _ := doJSON(t, app, "POST", "/api/v1/submissions", studentToken, fiber.Map{
		"assignment_id": assignmentID,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Teacher grades it.
	resp, body := doJSON(t, app, "POST", fmt.Sprintf("/api/v1/submissions/%d/grade", submissionID), teacherToken, fiber.Map{
		"score": 85,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var gradeItem struct {
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &gradeItem))
	require.Equal(t, float64(85), gradeItem.Score)

	// Gradebook for the class and subject contains the graded submission.
	resp, body = doJSON(t, app, "GET", fmt.Sprintf("/api/v1/reports/class/%d/subject/%d", classID, subjectID), teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var gradebook struct {
		Assignments []struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"assignments"`
		Submissions []struct {
			Student struct {
				ID uint `json:"id"`
			} `json:"student"`
			GradeItem *struct {
				Score float64 `json:"score"`
			} `json:"grade_item"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &gradebook))
	require.Len(t, gradebook.Assignments, 1)
	require.Equal(t, "Quiz 1", gradebook.Assignments[0].Title)
	require.Len(t, gradebook.Submissions, 1)
	require.Equal(t, studentID, gradebook.Submissions[0].Student.ID)
	require.NotNil(t, gradebook.Submissions[0].GradeItem)
	require.Equal(t, float64(85), gradebook.Submissions[0].GradeItem.Score)

	// The student sees the grade in their own report.
	resp, body = doJSON(t, app, "GET", fmt.Sprintf("/api/v1/reports/student/%d", studentID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report struct {
		Submissions []struct {
			AssignmentTitle string `json:"assignment_title"`
			GradeItem       *struct {
				Score float64 `json:"score"`
			} `json:"grade_item"`
		} `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &report))
	require.Len(t, report.Submissions, 1)
	require.Equal(t, "Quiz 1", report.Submissions[0].AssignmentTitle)
	require.NotNil(t, report.Submissions[0].GradeItem)
	require.Equal(t, float64(85), report.Submissions[0].GradeItem.Score)
}

func TestRouterRoleBoundaries(t *testing.T) {
	app := setupApp(t)

	adminToken := login(t, app, "admin@school.local", "ChangeMe123!")
	createEntity(t, app, "/api/v1/users", adminToken, fiber.Map{
		"email": "alice@school.local", "password": "Secret123!", "role": "STUDENT",
		"first_name": "Alice", "last_name": "Nguyen",
	})
	createEntity(t, app, "/api/v1/users", adminToken, fiber.Map{
		"email": "teacher@school.local", "password": "Secret123!", "role": "TEACHER",
		"first_name": "Tina", "last_name": "Teacher",
	})
	studentToken := login(t, app, "alice@school.local", "Secret123!")
	teacherToken := login(t, app, "teacher@school.local", "Secret123!")

	// No token at all.
	resp, _ := doJSON(t, app, "GET", "/api/v1/grades", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Students cannot touch academic structure or user management.
	resp, _ = doJSON(t, app, "POST", "/api/v1/subjects", studentToken, fiber.Map{"name": "Hacking"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, app, "GET", "/api/v1/users", studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Teachers author content but do not manage academic structure.
	resp, _ = doJSON(t, app, "POST", "/api/v1/grades", teacherToken, fiber.Map{"name": "Grade 9"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Students cannot grade.
	resp, _ = doJSON(t, app, "POST", "/api/v1/submissions/1/grade", studentToken, fiber.Map{"score": 100})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Submitting and listing own submissions are open to every authenticated
	// role, the identity comes from the token.
	resp, _ = doJSON(t, app, "GET", "/api/v1/submissions/me", teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, "POST", "/api/v1/submissions", teacherToken, fiber.Map{"assignment_id": 12345})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Students cannot read another student's report.
	resp, _ = doJSON(t, app, "GET", "/api/v1/reports/student/999", studentToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Reads are open to every authenticated role.
	resp, _ = doJSON(t, app, "GET", "/api/v1/grades", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRouterCodeRedemptionFlow(t *testing.T) {
	app := setupApp(t)

	adminToken := login(t, app, "admin@school.local", "ChangeMe123!")
	subjectID := createEntity(t, app, "/api/v1/subjects", adminToken, fiber.Map{"name": "Science", "code": "SCI"})
	createEntity(t, app, "/api/v1/users", adminToken, fiber.Map{
		"email": "alice@school.local", "password": "Secret123!", "role": "STUDENT",
		"first_name": "Alice", "last_name": "Nguyen",
	})
	studentToken := login(t, app, "alice@school.local", "Secret123!")

	// Students cannot mint codes.
	resp, _ := doJSON(t, app, "POST", "/api/v1/codes/generate", studentToken, fiber.Map{"subject_id": subjectID, "count": 1})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/v1/codes/generate", adminToken, fiber.Map{"subject_id": subjectID, "count": 2})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var generated []struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &generated))
	require.Len(t, generated, 2)

	resp, body = doJSON(t, app, "POST", "/api/v1/codes/redeem", studentToken, fiber.Map{"code": generated[0].Code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		SubjectID uint `json:"subject_id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	require.Equal(t, subjectID, result.SubjectID)

	// The same code cannot be redeemed twice.
	resp, _ = doJSON(t, app, "POST", "/api/v1/codes/redeem", studentToken, fiber.Map{"code": generated[0].Code})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
