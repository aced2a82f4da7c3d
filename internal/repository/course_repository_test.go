package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

func courseRows(t *testing.T, course models.Course) *sqlmock.Rows {
	t.Helper()
	modules, err := json.Marshal(course.Modules)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "title", "description", "short_description", "instructor_id", "category", "price", "thumbnail_url", "modules", "status", "language", "level", "tags", "created_at", "updated_at"}).
		AddRow(course.ID, course.Title, course.Description, nil, course.InstructorID, course.Category, course.Price, nil, modules, string(course.Status), course.Language, course.Level, pq.StringArray(course.Tags), course.CreatedAt, course.UpdatedAt)
}

func sampleCourse() models.Course {
	return models.Course{
		ID:           "c1",
		Title:        "Go Basics",
		Description:  "desc",
		InstructorID: "i1",
		Category:     "programming",
		Status:       models.CourseStatusPublished,
		Language:     "en",
		Level:        "beginner",
		Tags:         pq.StringArray{"go"},
		Modules: models.Modules{
			{ID: "m1", Title: "Intro", Order: 1, Lessons: []models.Lesson{
				{ID: "l1", Title: "Hello", Content: "hi", Type: models.LessonTypeText, Order: 1},
			}},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCourseFindByIDScansModules(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses WHERE id").
		WithArgs("c1").
		WillReturnRows(courseRows(t, sampleCourse()))

	course, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, course.Modules, 1)
	assert.Equal(t, "m1", course.Modules[0].ID)
	require.Len(t, course.Modules[0].Lessons, 1)
	assert.Equal(t, "l1", course.Modules[0].Lessons[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseFindByModuleIDUsesJSONPath(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses WHERE jsonb_path_exists").
		WithArgs("m1").
		WillReturnRows(courseRows(t, sampleCourse()))

	course, err := repo.FindByModuleID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseFindByLessonIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses WHERE jsonb_path_exists").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByLessonID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCourseReplaceModulesSingleUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE courses SET modules").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceModules(context.Background(), "c1", models.Modules{{ID: "m1", Title: "Intro", Order: 1}}, now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses WHERE status = .+ AND category = .+ ORDER BY created_at DESC LIMIT 10 OFFSET 5").
		WithArgs(string(models.CourseStatusPublished), "programming").
		WillReturnRows(courseRows(t, sampleCourse()))

	courses, err := repo.List(context.Background(), models.CourseFilter{Category: "programming", Limit: 10, Skip: 5})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
