package dto

import (
	"time"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// ProgressUpdateRequest records activity on a single lesson.
type ProgressUpdateRequest struct {
	LessonID         string `json:"lesson_id" validate:"required"`
	Completed        bool   `json:"completed"`
	TimeSpentMinutes int    `json:"time_spent_minutes" validate:"gte=0"`
	LastPosition     *int   `json:"last_position"`
}

// CourseProgress is the per-course progress view for the calling user.
type CourseProgress struct {
	CourseID        string                  `json:"course_id"`
	OverallProgress float64                 `json:"overall_progress"`
	LastAccessed    *time.Time              `json:"last_accessed,omitempty"`
	LessonProgress  []models.LessonProgress `json:"lesson_progress"`
}
