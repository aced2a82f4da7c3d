package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

func TestEnrollmentCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{UserID: "u1", CourseID: "c1"}
	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.ID)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.False(t, enrollment.EnrollmentDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentUpdateProgressTouchesOnlyProgressColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	// Pin the full SET clause: percentage and last_accessed are the only
	// columns mutated after creation, status and completion_date stay put.
	now := time.Now().UTC()
	mock.ExpectExec(`UPDATE enrollments\s+SET progress_percentage = \$3,\s+last_accessed = \$4\s+WHERE user_id = \$1 AND course_id = \$2`).
		WithArgs("u1", "c1", 50.0, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProgress(context.Background(), "u1", "c1", 50.0, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentListDetailsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "course_id", "enrollment_date", "completion_date", "status", "progress_percentage", "last_accessed", "payment_id", "course_title", "course_thumbnail", "instructor_name"}).
		AddRow("e1", "u1", "c1", now, nil, string(models.EnrollmentStatusActive), 25.0, nil, nil, "Go Basics", nil, "Grace")
	mock.ExpectQuery("SELECT e.id, .+ FROM enrollments e").
		WithArgs("u1").
		WillReturnRows(rows)

	details, err := repo.ListDetailsByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Go Basics", details[0].CourseTitle)
	assert.Equal(t, "Grace", details[0].InstructorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
