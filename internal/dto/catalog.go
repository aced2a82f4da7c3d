package dto

import (
	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// CreateCourseRequest is the instructor-facing course creation payload.
type CreateCourseRequest struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	ShortDescription *string  `json:"short_description"`
	Category         string   `json:"category" validate:"required"`
	Price            float64  `json:"price" validate:"gte=0"`
	ThumbnailURL     *string  `json:"thumbnail_url"`
	Language         string   `json:"language"`
	Level            string   `json:"level"`
	Tags             []string `json:"tags"`
}

// UpdateCourseRequest is a partial-merge update; only supplied fields are
// written.
type UpdateCourseRequest struct {
	Title            *string              `json:"title"`
	Description      *string              `json:"description"`
	ShortDescription *string              `json:"short_description"`
	Category         *string              `json:"category"`
	Price            *float64             `json:"price" validate:"omitempty,gte=0"`
	ThumbnailURL     *string              `json:"thumbnail_url"`
	Language         *string              `json:"language"`
	Level            *string              `json:"level"`
	Tags             []string             `json:"tags"`
	Status           *models.CourseStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CourseItem is a catalog entry enriched with instructor and totals.
type CourseItem struct {
	models.Course
	InstructorName       string `json:"instructor_name"`
	TotalModules         int    `json:"total_modules"`
	TotalLessons         int    `json:"total_lessons"`
	TotalDurationMinutes int    `json:"total_duration_minutes"`
}
