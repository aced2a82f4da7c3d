package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// ProgressRepository provides database access for per-lesson progress rows.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new instance of ProgressRepository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// FindByUserAndLesson returns the progress row for one user and lesson.
func (r *ProgressRepository) FindByUserAndLesson(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	const query = `SELECT id, user_id, course_id, lesson_id, completed, completion_date, time_spent_minutes, last_position, created_at, updated_at FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2 LIMIT 1`
	var progress models.LessonProgress
	if err := r.db.GetContext(ctx, &progress, query, userID, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson progress: %w", err)
	}
	return &progress, nil
}

// Create inserts a new progress row.
func (r *ProgressRepository) Create(ctx context.Context, progress *models.LessonProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}
	progress.UpdatedAt = now

	const query = `INSERT INTO lesson_progress (id, user_id, course_id, lesson_id, completed, completion_date, time_spent_minutes, last_position, created_at, updated_at) VALUES (:id, :user_id, :course_id, :lesson_id, :completed, :completion_date, :time_spent_minutes, :last_position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("create lesson progress: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing progress row.
func (r *ProgressRepository) Update(ctx context.Context, progress *models.LessonProgress) error {
	progress.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lesson_progress SET completed = :completed, completion_date = :completion_date, time_spent_minutes = :time_spent_minutes, last_position = :last_position, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, progress); err != nil {
		return fmt.Errorf("update lesson progress: %w", err)
	}
	return nil
}

// ListByUserAndCourse returns all progress rows a user has in a course.
func (r *ProgressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]models.LessonProgress, error) {
	const query = `SELECT id, user_id, course_id, lesson_id, completed, completion_date, time_spent_minutes, last_position, created_at, updated_at FROM lesson_progress WHERE user_id = $1 AND course_id = $2`
	var rows []models.LessonProgress
	if err := r.db.SelectContext(ctx, &rows, query, userID, courseID); err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	return rows, nil
}

// CountCompleted returns how many lessons the user has completed in a course.
func (r *ProgressRepository) CountCompleted(ctx context.Context, userID, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lesson_progress WHERE user_id = $1 AND course_id = $2 AND completed = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, courseID); err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return count, nil
}

// DeleteByLessonIDs removes progress rows for the given lessons across all
// users. Used when lessons are removed from the curriculum.
func (r *ProgressRepository) DeleteByLessonIDs(ctx context.Context, lessonIDs []string) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	const query = `DELETE FROM lesson_progress WHERE lesson_id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(lessonIDs)); err != nil {
		return fmt.Errorf("delete lesson progress: %w", err)
	}
	return nil
}
