package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

func testProgressService(progress *fakeProgressStore, courses *fakeCourseStore, enrollments *fakeEnrollmentStore) *ProgressService {
	return NewProgressService(progress, courses, enrollments, validator.New(), zap.NewNop())
}

func TestRecordCreatesProgressAndRecomputesPercentage(t *testing.T) {
	courses := newFakeCourseStore(courseFixture())
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	progress := newFakeProgressStore()
	svc := testProgressService(progress, courses, enrollments)

	record, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{
		LessonID:         "l1",
		Completed:        true,
		TimeSpentMinutes: 10,
	})
	require.NoError(t, err)
	assert.True(t, record.Completed)
	require.NotNil(t, record.CompletionDate)

	// 1 of 3 lessons complete.
	require.Len(t, enrollments.progressWrites, 1)
	assert.InDelta(t, 100.0/3.0, enrollments.progressWrites[0], 0.01)
}

func TestRecordReachesHundredPercent(t *testing.T) {
	courses := newFakeCourseStore(courseFixture())
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	progress := newFakeProgressStore()
	svc := testProgressService(progress, courses, enrollments)

	for _, lessonID := range []string{"l1", "l2", "l3"} {
		_, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: lessonID, Completed: true})
		require.NoError(t, err)
	}

	require.Len(t, enrollments.progressWrites, 3)
	assert.InDelta(t, 100.0, enrollments.progressWrites[2], 0.01)
}

func TestRecordCompletionDateSetOnce(t *testing.T) {
	courses := newFakeCourseStore(courseFixture())
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	progress := newFakeProgressStore()
	svc := testProgressService(progress, courses, enrollments)

	first, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", Completed: true})
	require.NoError(t, err)
	require.NotNil(t, first.CompletionDate)
	stamp := *first.CompletionDate

	time.Sleep(5 * time.Millisecond)
	second, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", Completed: true})
	require.NoError(t, err)
	require.NotNil(t, second.CompletionDate)
	assert.Equal(t, stamp, *second.CompletionDate)
}

func TestRecordKeepsCompletionDateWhenUnchecked(t *testing.T) {
	courses := newFakeCourseStore(courseFixture())
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	progress := newFakeProgressStore()
	svc := testProgressService(progress, courses, enrollments)

	_, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", Completed: true})
	require.NoError(t, err)

	record, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", Completed: false})
	require.NoError(t, err)
	assert.False(t, record.Completed)
	assert.NotNil(t, record.CompletionDate)
}

func TestRecordOverwritesTimeSpent(t *testing.T) {
	// Each update replaces the reported time, it is not a running total.
	courses := newFakeCourseStore(courseFixture())
	enrollments := newFakeEnrollmentStore()
	enrollments.enroll("student-1", "c1")
	svc := testProgressService(newFakeProgressStore(), courses, enrollments)

	_, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", TimeSpentMinutes: 10})
	require.NoError(t, err)
	record, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "l1", TimeSpentMinutes: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, record.TimeSpentMinutes)
}

func TestRecordUnknownLesson(t *testing.T) {
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	_, err := svc.Record(context.Background(), "student-1", dto.ProgressUpdateRequest{LessonID: "ghost", Completed: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestRecordWithoutEnrollmentStillSucceeds(t *testing.T) {
	// The write path does not gate on enrollment; the percentage update just
	// touches zero rows.
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	record, err := svc.Record(context.Background(), "stranger", dto.ProgressUpdateRequest{LessonID: "l1", Completed: true})
	require.NoError(t, err)
	assert.True(t, record.Completed)
}

func TestCourseProgressRequiresEnrollment(t *testing.T) {
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	_, err := svc.CourseProgress(context.Background(), "student-1", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestCourseProgressReturnsEnrollmentPercentage(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollment := enrollments.enroll("student-1", "c1")
	enrollment.ProgressPercentage = 66.6
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), enrollments)

	progress, err := svc.CourseProgress(context.Background(), "student-1", "c1")
	require.NoError(t, err)
	assert.InDelta(t, 66.6, progress.OverallProgress, 0.01)
	assert.NotNil(t, progress.LessonProgress)
}

func TestExportReportInstructorOnly(t *testing.T) {
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	_, _, _, err := svc.ExportReport(context.Background(), "student-1", models.RoleStudent, "c1", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestExportReportCSV(t *testing.T) {
	enrollments := newFakeEnrollmentStore()
	enrollments.reportRows = []models.EnrollmentReportRow{
		{
			Enrollment: models.Enrollment{
				UserID:             "student-1",
				CourseID:           "c1",
				EnrollmentDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Status:             models.EnrollmentStatusActive,
				ProgressPercentage: 50,
			},
			StudentName:  "Ada",
			StudentEmail: "ada@example.com",
		},
	}
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), enrollments)

	payload, contentType, filename, err := svc.ExportReport(context.Background(), "instructor-1", models.RoleInstructor, "c1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "progress-c1.csv", filename)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Student,Email,Status"))
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "50.0")
}

func TestExportReportPDF(t *testing.T) {
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	payload, contentType, _, err := svc.ExportReport(context.Background(), "instructor-1", models.RoleInstructor, "c1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExportReportUnknownFormat(t *testing.T) {
	svc := testProgressService(newFakeProgressStore(), newFakeCourseStore(courseFixture()), newFakeEnrollmentStore())

	_, _, _, err := svc.ExportReport(context.Background(), "instructor-1", models.RoleInstructor, "c1", "xml")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}
