package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/observability"
	"github.com/openedu/school-api/internal/repository"
)

// ReportService produces aggregated grade reports.
type ReportService interface {
	StudentReport(ctx context.Context, studentID uint) (dto.StudentReportResponse, error)
	ClassSubjectReport(ctx context.Context, classID, subjectID uint) (dto.ClassSubjectReportResponse, error)
	InvalidateClassReports(ctx context.Context) error
}

type reportService struct {
	users       repository.UserRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewReportService builds the report aggregator. The cache may be nil, in
// which case every report is computed from the database.
func NewReportService(
	users repository.UserRepository,
	enrollments repository.EnrollmentRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		users:       users,
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/openedu/school-api/internal/service/report"),
	}
}

func (s *reportService) StudentReport(ctx context.Context, studentID uint) (dto.StudentReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.student", trace.WithAttributes(
		attribute.Int("report.student_id", int(studentID)),
	))
	defer span.End()

	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentReportResponse{}, ErrUserNotFound
		}
		return dto.StudentReportResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentReportResponse{}, err
	}

	entries := make([]dto.StudentReportEntry, 0, len(submissions))
	for _, submission := range submissions {
		entries = append(entries, dto.NewStudentReportEntry(submission))
	}

	span.SetAttributes(attribute.Int("report.submission_count", len(entries)))

	return dto.StudentReportResponse{
		Student:     dto.NewUserResponse(student),
		Submissions: entries,
	}, nil
}

// ClassSubjectReport collects the assignments for a subject alongside the
// submissions made by students enrolled in the class. Results are cached
// briefly since gradebook views are read far more often than grades change.
func (s *reportService) ClassSubjectReport(ctx context.Context, classID, subjectID uint) (dto.ClassSubjectReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.class_subject", trace.WithAttributes(
		attribute.Int("report.class_id", int(classID)),
		attribute.Int("report.subject_id", int(subjectID)),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("report:class:%d:subject:%d", classID, subjectID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ClassSubjectReportResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.ReportCache().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("report.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report cache")
		}
		observability.ReportCache().WithLabelValues("miss").Inc()
	}

	assignments, err := s.assignments.ListBySubject(ctx, subjectID)
	if err != nil {
		return dto.ClassSubjectReportResponse{}, err
	}

	studentIDs, err := s.enrollments.StudentIDsByClass(ctx, classID)
	if err != nil {
		return dto.ClassSubjectReportResponse{}, err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	refs := make([]dto.AssignmentRef, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
		refs = append(refs, dto.AssignmentRef{ID: assignment.ID, Title: assignment.Title})
	}

	submissions, err := s.submissions.ListByAssignmentsAndStudents(ctx, assignmentIDs, studentIDs)
	if err != nil {
		return dto.ClassSubjectReportResponse{}, err
	}

	rows := make([]dto.ReportSubmission, 0, len(submissions))
	for _, submission := range submissions {
		rows = append(rows, dto.NewReportSubmission(submission))
	}

	response := dto.ClassSubjectReportResponse{
		Assignments: refs,
		Submissions: rows,
	}

	span.SetAttributes(
		attribute.Int("report.assignment_count", len(refs)),
		attribute.Int("report.student_count", len(studentIDs)),
		attribute.Int("report.submission_count", len(rows)),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store report cache")
			}
		}
	}

	return response, nil
}

// InvalidateClassReports drops every cached gradebook so the next read
// recomputes from the database. Called after submissions or grades change.
func (s *reportService) InvalidateClassReports(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	iter := s.cache.Scan(ctx, 0, "report:class:*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	s.logger.Debug().Int("keys", len(keys)).Msg("report cache invalidated")
	return nil
}
