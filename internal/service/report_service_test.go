package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openedu/school-api/internal/models"
)

type fakeEnrollmentRepo struct {
	studentsByClass map[uint][]uint
}

func (f *fakeEnrollmentRepo) Create(context.Context, *models.Enrollment) error { return nil }

func (f *fakeEnrollmentRepo) ListByClass(context.Context, uint) ([]models.Enrollment, error) {
	return nil, nil
}

func (f *fakeEnrollmentRepo) ListByUser(context.Context, uint) ([]models.Enrollment, error) {
	return nil, nil
}

func (f *fakeEnrollmentRepo) StudentIDsByClass(_ context.Context, classID uint) ([]uint, error) {
	return f.studentsByClass[classID], nil
}

func (f *fakeEnrollmentRepo) DeleteByUserAndClass(context.Context, uint, uint) error { return nil }

type fakeAssignmentRepo struct {
	bySubject map[uint][]models.Assignment
}

func (f *fakeAssignmentRepo) ListByLesson(context.Context, uint) ([]models.Assignment, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) ListBySubject(_ context.Context, subjectID uint) ([]models.Assignment, error) {
	return f.bySubject[subjectID], nil
}

func (f *fakeAssignmentRepo) GetByID(context.Context, uint) (models.Assignment, error) {
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (f *fakeAssignmentRepo) Create(context.Context, *models.Assignment) error { return nil }
func (f *fakeAssignmentRepo) Update(context.Context, *models.Assignment) error { return nil }
func (f *fakeAssignmentRepo) Delete(context.Context, uint) error               { return nil }

func seedGradedSubmission(repo *fakeSubmissionRepo, id, assignmentID, studentID uint, score float64) {
	repo.submissions[id] = models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
		Assignment:   models.Assignment{ID: assignmentID, Title: "Quiz 1"},
		Student:      models.User{ID: studentID, FirstName: "Alice", LastName: "Nguyen"},
		GradeItem: &models.GradeItem{
			ID:           id,
			SubmissionID: id,
			Score:        score,
			GradedByID:   5,
			GradedAt:     time.Now().UTC(),
		},
	}
}

func TestReportServiceStudentReport(t *testing.T) {
	users := &fakeUserRepo{users: map[string]models.User{
		"alice@school.local": {ID: 42, Email: "alice@school.local", Role: models.RoleStudent, Active: true},
	}}
	submissions := newFakeSubmissionRepo()
	seedGradedSubmission(submissions, 1, 9, 42, 85)

	svc := NewReportService(users, &fakeEnrollmentRepo{}, &fakeAssignmentRepo{}, submissions, nil, 0, zerolog.Nop())

	report, err := svc.StudentReport(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, uint(42), report.Student.ID)
	require.Len(t, report.Submissions, 1)
	require.Equal(t, "Quiz 1", report.Submissions[0].AssignmentTitle)
	require.NotNil(t, report.Submissions[0].GradeItem)
	require.Equal(t, float64(85), report.Submissions[0].GradeItem.Score)
}

func TestReportServiceStudentReportUnknownStudent(t *testing.T) {
	users := &fakeUserRepo{users: map[string]models.User{}}
	svc := NewReportService(users, &fakeEnrollmentRepo{}, &fakeAssignmentRepo{}, newFakeSubmissionRepo(), nil, 0, zerolog.Nop())

	_, err := svc.StudentReport(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestReportServiceClassSubjectReport(t *testing.T) {
	users := &fakeUserRepo{users: map[string]models.User{}}
	enrollments := &fakeEnrollmentRepo{studentsByClass: map[uint][]uint{
		7: {42, 43},
	}}
	assignments := &fakeAssignmentRepo{bySubject: map[uint][]models.Assignment{
		3: {{ID: 9, Title: "Quiz 1"}},
	}}
	submissions := newFakeSubmissionRepo()
	seedGradedSubmission(submissions, 1, 9, 42, 85)
	// Outside the class, must not appear in the report.
	seedGradedSubmission(submissions, 2, 9, 99, 40)

	svc := NewReportService(users, enrollments, assignments, submissions, nil, 0, zerolog.Nop())

	report, err := svc.ClassSubjectReport(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, report.Assignments, 1)
	require.Equal(t, "Quiz 1", report.Assignments[0].Title)
	require.Len(t, report.Submissions, 1)
	require.Equal(t, uint(42), report.Submissions[0].Student.ID)
	require.Equal(t, "Alice", report.Submissions[0].Student.FirstName)
	require.NotNil(t, report.Submissions[0].GradeItem)
	require.Equal(t, float64(85), report.Submissions[0].GradeItem.Score)
}

func TestReportServiceClassSubjectReportEmptyClass(t *testing.T) {
	enrollments := &fakeEnrollmentRepo{studentsByClass: map[uint][]uint{}}
	assignments := &fakeAssignmentRepo{bySubject: map[uint][]models.Assignment{
		3: {{ID: 9, Title: "Quiz 1"}},
	}}
	svc := NewReportService(&fakeUserRepo{}, enrollments, assignments, newFakeSubmissionRepo(), nil, 0, zerolog.Nop())

	report, err := svc.ClassSubjectReport(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, report.Assignments, 1)
	require.Empty(t, report.Submissions)
}

func TestReportServiceClassSubjectReportCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	enrollments := &fakeEnrollmentRepo{studentsByClass: map[uint][]uint{7: {42}}}
	assignments := &fakeAssignmentRepo{bySubject: map[uint][]models.Assignment{
		3: {{ID: 9, Title: "Quiz 1"}},
	}}
	submissions := newFakeSubmissionRepo()
	seedGradedSubmission(submissions, 1, 9, 42, 85)

	svc := NewReportService(&fakeUserRepo{}, enrollments, assignments, submissions, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.ClassSubjectReport(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, first.Submissions, 1)
	require.True(t, mr.Exists("report:class:7:subject:3"))

	// The cached copy is served even after the underlying data changes.
	seedGradedSubmission(submissions, 2, 9, 42, 90)
	second, err := svc.ClassSubjectReport(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, second.Submissions, 1)

	mr.FastForward(2 * time.Minute)
	third, err := svc.ClassSubjectReport(ctx, 7, 3)
	require.NoError(t, err)
	require.Len(t, third.Submissions, 2)
}

func TestReportServiceInvalidateClassReports(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	enrollments := &fakeEnrollmentRepo{studentsByClass: map[uint][]uint{7: {42}}}
	assignments := &fakeAssignmentRepo{bySubject: map[uint][]models.Assignment{
		3: {{ID: 9, Title: "Quiz 1"}},
	}}
	submissions := newFakeSubmissionRepo()
	seedGradedSubmission(submissions, 1, 9, 42, 70)

	svc := NewReportService(&fakeUserRepo{}, enrollments, assignments, submissions, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.ClassSubjectReport(ctx, 7, 3)
	require.NoError(t, err)
	require.Equal(t, float64(70), first.Submissions[0].GradeItem.Score)
	require.True(t, mr.Exists("report:class:7:subject:3"))

	// A regrade followed by invalidation is visible immediately, well within
	// the cache TTL.
	seedGradedSubmission(submissions, 1, 9, 42, 85)
	require.NoError(t, svc.InvalidateClassReports(ctx))
	require.False(t, mr.Exists("report:class:7:subject:3"))

	second, err := svc.ClassSubjectReport(ctx, 7, 3)
	require.NoError(t, err)
	require.Equal(t, float64(85), second.Submissions[0].GradeItem.Score)
}

func TestReportServiceInvalidateWithoutCache(t *testing.T) {
	svc := NewReportService(&fakeUserRepo{}, &fakeEnrollmentRepo{}, &fakeAssignmentRepo{}, newFakeSubmissionRepo(), nil, 0, zerolog.Nop())
	require.NoError(t, svc.InvalidateClassReports(context.Background()))
}
