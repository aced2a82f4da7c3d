package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

func TestProgressCountCompleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM lesson_progress").
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountCompleted(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressDeleteByLessonIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec("DELETE FROM lesson_progress WHERE lesson_id = ANY").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.DeleteByLessonIDs(context.Background(), []string{"l1", "l2"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressDeleteByLessonIDsEmptyNoQuery(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	err := repo.DeleteByLessonIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgressRepository(db)

	mock.ExpectExec("INSERT INTO lesson_progress").WillReturnResult(sqlmock.NewResult(1, 1))

	progress := &models.LessonProgress{UserID: "u1", CourseID: "c1", LessonID: "l1", Completed: true}
	err := repo.Create(context.Background(), progress)
	require.NoError(t, err)
	assert.NotEmpty(t, progress.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
