package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/dto"
	"github.com/openedu/school-api/internal/models"
)

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]models.Submission{}, nextID: 1}
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	for _, existing := range f.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = f.nextID
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if submission.StudentID == studentID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByAssignmentsAndStudents(_ context.Context, assignmentIDs, studentIDs []uint) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, submission := range f.submissions {
		if containsID(assignmentIDs, submission.AssignmentID) && containsID(studentIDs, submission.StudentID) {
			out = append(out, submission)
		}
	}
	return out, nil
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type fakeGradeItemRepo struct {
	items  map[uint]models.GradeItem
	nextID uint
}

func newFakeGradeItemRepo() *fakeGradeItemRepo {
	return &fakeGradeItemRepo{items: map[uint]models.GradeItem{}, nextID: 1}
}

func (f *fakeGradeItemRepo) GetBySubmission(_ context.Context, submissionID uint) (models.GradeItem, error) {
	item, ok := f.items[submissionID]
	if !ok {
		return models.GradeItem{}, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeGradeItemRepo) Create(_ context.Context, item *models.GradeItem) error {
	if _, ok := f.items[item.SubmissionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	item.ID = f.nextID
	f.nextID++
	f.items[item.SubmissionID] = *item
	return nil
}

func (f *fakeGradeItemRepo) Update(_ context.Context, item *models.GradeItem) error {
	f.items[item.SubmissionID] = *item
	return nil
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

type fakeReportCache struct {
	invalidations int
}

func (f *fakeReportCache) InvalidateClassReports(_ context.Context) error {
	f.invalidations++
	return nil
}

func newSubmissionFixture() (*fakeGradeItemRepo, *fakePublisher, *fakeReportCache, SubmissionService) {
	submissions := newFakeSubmissionRepo()
	gradeItems := newFakeGradeItemRepo()
	publisher := &fakePublisher{}
	reports := &fakeReportCache{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(submissions, gradeItems, publisher, reports, validate, zerolog.Nop())
	return gradeItems, publisher, reports, svc
}

func TestSubmissionServiceSubmit(t *testing.T) {
	_, _, _, svc := newSubmissionFixture()
	ctx := context.Background()

	response, err := svc.Submit(ctx, 42, dto.SubmissionCreateRequest{
		AssignmentID: 1,
		Responses:    json.RawMessage(`{"1": "B"}`),
	})
	require.NoError(t, err)
	require.Equal(t, uint(42), response.StudentID)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.False(t, response.SubmittedAt.IsZero())

	_, err = svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	// Same assignment, different student is fine.
	_, err = svc.Submit(ctx, 43, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.NoError(t, err)
}

func TestSubmissionServiceGradeUpsertsAndPublishes(t *testing.T) {
	gradeItems, publisher, _, svc := newSubmissionFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 9})
	require.NoError(t, err)

	score := 70.0
	first, err := svc.Grade(ctx, submitted.ID, 5, dto.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
	require.Equal(t, 70.0, first.Score)
	require.Equal(t, uint(5), first.GradedByID)

	// Regrading overwrites the existing outcome instead of adding a second one.
	score = 85.0
	second, err := svc.Grade(ctx, submitted.ID, 6, dto.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 85.0, second.Score)
	require.Equal(t, uint(6), second.GradedByID)
	require.Len(t, gradeItems.items, 1)

	require.Len(t, publisher.subjects, 2)
	require.Equal(t, "school.submissions.graded", publisher.subjects[0])

	var event struct {
		EventID      string  `json:"event_id"`
		SubmissionID uint    `json:"submission_id"`
		AssignmentID uint    `json:"assignment_id"`
		StudentID    uint    `json:"student_id"`
		Score        float64 `json:"score"`
		GradedByID   uint    `json:"graded_by_id"`
	}
	require.NoError(t, json.Unmarshal(publisher.payloads[1], &event))
	require.NotEmpty(t, event.EventID)
	require.Equal(t, submitted.ID, event.SubmissionID)
	require.Equal(t, uint(9), event.AssignmentID)
	require.Equal(t, uint(42), event.StudentID)
	require.Equal(t, 85.0, event.Score)
	require.Equal(t, uint(6), event.GradedByID)
}

func TestSubmissionServiceGradeMissingSubmission(t *testing.T) {
	_, _, _, svc := newSubmissionFixture()

	score := 50.0
	_, err := svc.Grade(context.Background(), 999, 5, dto.GradeSubmissionRequest{Score: &score})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionServiceGradeWithoutPublisher(t *testing.T) {
	submissions := newFakeSubmissionRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(submissions, newFakeGradeItemRepo(), nil, nil, validate, zerolog.Nop())
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.NoError(t, err)

	score := 60.0
	_, err = svc.Grade(ctx, submitted.ID, 5, dto.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
}

func TestSubmissionServiceWritesDropReportCache(t *testing.T) {
	_, _, reports, svc := newSubmissionFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, reports.invalidations)

	score := 70.0
	_, err = svc.Grade(ctx, submitted.ID, 5, dto.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
	require.Equal(t, 2, reports.invalidations)

	// A regrade drops the cache again.
	score = 85.0
	_, err = svc.Grade(ctx, submitted.ID, 5, dto.GradeSubmissionRequest{Score: &score})
	require.NoError(t, err)
	require.Equal(t, 3, reports.invalidations)

	// Failed writes leave the cache alone.
	_, err = svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.ErrorIs(t, err, ErrAlreadySubmitted)
	require.Equal(t, 3, reports.invalidations)
}

func TestSubmissionServiceGradeRejectsNegativeScore(t *testing.T) {
	_, _, _, svc := newSubmissionFixture()
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, 42, dto.SubmissionCreateRequest{AssignmentID: 1})
	require.NoError(t, err)

	score := -1.0
	_, err = svc.Grade(ctx, submitted.ID, 5, dto.GradeSubmissionRequest{Score: &score})
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
