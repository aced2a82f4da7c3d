package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// EnrollmentRepository provides database access for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}

	const query = `INSERT INTO enrollments (id, user_id, course_id, enrollment_date, completion_date, status, progress_percentage, last_accessed, payment_id) VALUES (:id, :user_id, :course_id, :enrollment_date, :completion_date, :status, :progress_percentage, :last_accessed, :payment_id)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByUserAndCourse returns the enrollment linking a user to a course.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	const query = `SELECT id, user_id, course_id, enrollment_date, completion_date, status, progress_percentage, last_accessed, payment_id FROM enrollments WHERE user_id = $1 AND course_id = $2 LIMIT 1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListDetailsByUser returns the user's enrollments joined with course and
// instructor summary fields, newest first.
func (r *EnrollmentRepository) ListDetailsByUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	const query = `
		SELECT e.id, e.user_id, e.course_id, e.enrollment_date, e.completion_date, e.status, e.progress_percentage, e.last_accessed, e.payment_id,
		       c.title AS course_title, c.thumbnail_url AS course_thumbnail, u.name AS instructor_name
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = c.instructor_id
		WHERE e.user_id = $1
		ORDER BY e.enrollment_date DESC`
	var details []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &details, query, userID); err != nil {
		return nil, fmt.Errorf("list enrollments by user: %w", err)
	}
	return details, nil
}

// ListByCourse returns all enrollments for a course joined with the learner's
// name and email, used for instructor progress reports.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentReportRow, error) {
	const query = `
		SELECT e.id, e.user_id, e.course_id, e.enrollment_date, e.completion_date, e.status, e.progress_percentage, e.last_accessed, e.payment_id,
		       u.name AS student_name, u.email AS student_email
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.course_id = $1
		ORDER BY e.enrollment_date ASC`
	var rows []models.EnrollmentReportRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list enrollments by course: %w", err)
	}
	return rows, nil
}

// UpdateProgress writes the recomputed completion percentage and the last
// activity timestamp. Nothing else on the row is mutated after creation.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, percentage float64, lastAccessed time.Time) error {
	const query = `
		UPDATE enrollments
		SET progress_percentage = $3,
		    last_accessed = $4
		WHERE user_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID, percentage, lastAccessed); err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}

// TouchLastAccessed refreshes the last activity timestamp.
func (r *EnrollmentRepository) TouchLastAccessed(ctx context.Context, userID, courseID string, at time.Time) error {
	const query = `UPDATE enrollments SET last_accessed = $3 WHERE user_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, courseID, at); err != nil {
		return fmt.Errorf("touch enrollment: %w", err)
	}
	return nil
}
