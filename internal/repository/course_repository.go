package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

const courseColumns = `id, title, description, short_description, instructor_id, category, price, thumbnail_url, modules, status, language, level, tags, created_at, updated_at`

// CourseRepository stores course aggregates. The module->lesson tree lives in
// the modules JSONB column, so every curriculum mutation is a single-row
// UPDATE and inherits row-level atomicity from the database.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course with an empty module tree.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Modules == nil {
		course.Modules = models.Modules{}
	}

	const query = `INSERT INTO courses (id, title, description, short_description, instructor_id, category, price, thumbnail_url, modules, status, language, level, tags, created_at, updated_at) VALUES (:id, :title, :description, :short_description, :instructor_id, :category, :price, :thumbnail_url, :modules, :status, :language, :level, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// FindByModuleID locates the course owning the given embedded module.
func (r *CourseRepository) FindByModuleID(ctx context.Context, moduleID string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE jsonb_path_exists(modules, '$[*] ? (@.id == $mid)', jsonb_build_object('mid', $1::text)) LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, moduleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by module id: %w", err)
	}
	return &course, nil
}

// FindByLessonID locates the course owning the given embedded lesson.
func (r *CourseRepository) FindByLessonID(ctx context.Context, lessonID string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE jsonb_path_exists(modules, '$[*].lessons[*] ? (@.id == $lid)', jsonb_build_object('lid', $1::text)) LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by lesson id: %w", err)
	}
	return &course, nil
}

// List returns published courses matching the catalog filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	conditions := []string{"status = $1"}
	args := []interface{}{models.CourseStatusPublished}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR $%d = ANY(tags))", idx, idx, idx+1))
		args = append(args, "%"+filter.Search+"%", filter.Search)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf("SELECT %s FROM courses WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		courseColumns, strings.Join(conditions, " AND "), limit, skip)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Update rewrites the mutable course fields.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, short_description = :short_description, category = :category, price = :price, thumbnail_url = :thumbnail_url, status = :status, language = :language, level = :level, tags = :tags, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// ReplaceModules persists a new module tree for the course in one statement.
func (r *CourseRepository) ReplaceModules(ctx context.Context, courseID string, modules models.Modules, updatedAt time.Time) error {
	const query = `UPDATE courses SET modules = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, courseID, modules, updatedAt); err != nil {
		return fmt.Errorf("replace course modules: %w", err)
	}
	return nil
}

// Delete removes a course row.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
