package dto

import (
	"time"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// CreateModuleRequest appends a module to a course.
type CreateModuleRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

// UpdateModuleRequest is a partial-merge module update.
type UpdateModuleRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// CreateLessonRequest appends a lesson to a module.
type CreateLessonRequest struct {
	Title           string            `json:"title" validate:"required"`
	Description     *string           `json:"description"`
	Content         string            `json:"content" validate:"required"`
	Type            models.LessonType `json:"lesson_type" validate:"required,oneof=video text quiz assignment"`
	DurationMinutes int               `json:"duration_minutes" validate:"gte=0"`
	IsFree          bool              `json:"is_free"`
}

// UpdateLessonRequest is a partial-merge lesson update. Order is never
// updatable: positions are append-only.
type UpdateLessonRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Content         *string `json:"content"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=0"`
	IsFree          *bool   `json:"is_free"`
}

// ModuleItem is a module enriched with its parent and derived totals.
type ModuleItem struct {
	models.Module
	CourseID             string `json:"course_id"`
	TotalLessons         int    `json:"total_lessons"`
	TotalDurationMinutes int    `json:"total_duration_minutes"`
}

// LessonProgressInfo is the per-lesson progress snapshot merged into the
// course structure view.
type LessonProgressInfo struct {
	Completed        bool       `json:"completed"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	LastPosition     *int       `json:"last_position,omitempty"`
	CompletionDate   *time.Time `json:"completion_date,omitempty"`
}

// CourseStructure is the full tree plus the caller's progress.
type CourseStructure struct {
	Course               models.Course                 `json:"course"`
	Modules              []ModuleItem                  `json:"modules"`
	TotalModules         int                           `json:"total_modules"`
	TotalLessons         int                           `json:"total_lessons"`
	TotalDurationMinutes int                           `json:"total_duration_minutes"`
	UserProgress         map[string]LessonProgressInfo `json:"user_progress"`
}

// LearningSession resolves the current lesson and its flat-order neighbors.
type LearningSession struct {
	CourseID        string                           `json:"course_id"`
	CurrentLessonID *string                          `json:"current_lesson_id,omitempty"`
	UserProgress    map[string]models.LessonProgress `json:"user_progress"`
	NextLesson      *models.Lesson                   `json:"next_lesson,omitempty"`
	PreviousLesson  *models.Lesson                   `json:"previous_lesson,omitempty"`
}
