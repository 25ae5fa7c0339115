package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
	"github.com/openedu/school-api/internal/observability"
	"github.com/openedu/school-api/internal/repository"
)

// Subject on which grading events are published.
const gradedEventSubject = "school.submissions.graded"

var (
	// ErrSubmissionNotFound indicates the requested submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAlreadySubmitted indicates the student has already submitted for the assignment.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrInvalidSubmissionReference indicates the assignment or student does not exist.
	ErrInvalidSubmissionReference = errors.New("invalid assignment or student reference")
	// ErrNotSubmissionOwner indicates the submission belongs to another student.
	ErrNotSubmissionOwner = errors.New("submission belongs to another student")
)

// EventPublisher abstracts the message broker used for grading events.
// *nats.Conn satisfies it directly.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// ReportCacheInvalidator drops cached gradebooks after submissions or grades
// change. ReportService satisfies it.
type ReportCacheInvalidator interface {
	InvalidateClassReports(ctx context.Context) error
}

// SubmissionService exposes submission and grading use cases.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeSubmissionRequest) (dto.GradeItemResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	gradeItems  repository.GradeItemRepository
	publisher   EventPublisher
	reports     ReportCacheInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

type gradedEvent struct {
	EventID      string    `json:"event_id"`
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	Score        float64   `json:"score"`
	GradedByID   uint      `json:"graded_by_id"`
	GradedAt     time.Time `json:"graded_at"`
}

// NewSubmissionService builds a new submission service. The publisher and the
// invalidator may be nil, in which case grading events and cache invalidation
// are skipped.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	gradeItems repository.GradeItemRepository,
	publisher EventPublisher,
	reports ReportCacheInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		gradeItems:  gradeItems,
		publisher:   publisher,
		reports:     reports,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    studentID,
		Responses:    datatypes.JSON(payload.Responses),
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  s.now().UTC(),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return dto.SubmissionResponse{}, ErrInvalidSubmissionReference
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", submission.AssignmentID).
		Uint("student_id", studentID).
		Msg("submission recorded")

	s.invalidateReports(ctx)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Grade records the score for a submission. Grading the same submission again
// overwrites the previous outcome rather than adding a second one.
func (s *submissionService) Grade(ctx context.Context, submissionID, graderID uint, payload dto.GradeSubmissionRequest) (dto.GradeItemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeItemResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeItemResponse{}, ErrSubmissionNotFound
		}
		return dto.GradeItemResponse{}, err
	}

	gradedAt := s.now().UTC()

	item, err := s.gradeItems.GetBySubmission(ctx, submissionID)
	switch {
	case err == nil:
		item.Score = *payload.Score
		item.Rubric = datatypes.JSON(payload.Rubric)
		item.GradedByID = graderID
		item.GradedAt = gradedAt
		if err := s.gradeItems.Update(ctx, &item); err != nil {
			return dto.GradeItemResponse{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.GradeItem{
			SubmissionID: submissionID,
			Score:        *payload.Score,
			Rubric:       datatypes.JSON(payload.Rubric),
			GradedByID:   graderID,
			GradedAt:     gradedAt,
		}
		if err := s.gradeItems.Create(ctx, &item); err != nil {
			return dto.GradeItemResponse{}, err
		}
	default:
		return dto.GradeItemResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submissionID).
		Uint("graded_by", graderID).
		Float64("score", item.Score).
		Msg("submission graded")

	s.publishGraded(submission, item)
	s.invalidateReports(ctx)

	return dto.NewGradeItemResponse(item), nil
}

// invalidateReports drops cached gradebooks after a write. Failures only
// degrade freshness, so they are logged rather than surfaced.
func (s *submissionService) invalidateReports(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.InvalidateClassReports(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate report cache")
	}
}

func (s *submissionService) publishGraded(submission models.Submission, item models.GradeItem) {
	if s.publisher == nil {
		return
	}

	event := gradedEvent{
		EventID:      uuid.NewString(),
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Score:        item.Score,
		GradedByID:   item.GradedByID,
		GradedAt:     item.GradedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode graded event")
		return
	}

	if err := s.publisher.Publish(gradedEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish graded event")
		return
	}

	observability.GradedEvents().Inc()
}
