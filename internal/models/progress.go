package models

import "time"

// LessonProgress is the per-user, per-lesson completion record. One row per
// (user, lesson); CompletionDate is set on the first false->true transition
// and never cleared afterwards.
type LessonProgress struct {
	ID               string     `db:"id" json:"id"`
	UserID           string     `db:"user_id" json:"user_id"`
	CourseID         string     `db:"course_id" json:"course_id"`
	LessonID         string     `db:"lesson_id" json:"lesson_id"`
	Completed        bool       `db:"completed" json:"completed"`
	CompletionDate   *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	TimeSpentMinutes int        `db:"time_spent_minutes" json:"time_spent_minutes"`
	LastPosition     *int       `db:"last_position" json:"last_position,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
