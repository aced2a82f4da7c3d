package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// CourseStatus represents the publication lifecycle of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// LessonType determines how the lesson content payload is interpreted.
type LessonType string

const (
	LessonTypeVideo      LessonType = "video"
	LessonTypeText       LessonType = "text"
	LessonTypeQuiz       LessonType = "quiz"
	LessonTypeAssignment LessonType = "assignment"
)

// Lesson is a single unit of course content, embedded inside a module.
// Content holds a video URL, text body, or serialized quiz depending on Type.
type Lesson struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Content         string     `json:"content"`
	Type            LessonType `json:"lesson_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Order           int        `json:"order"`
	IsFree          bool       `json:"is_free"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Module groups an ordered list of lessons inside a course.
type Module struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Lessons     []Lesson  `json:"lessons"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Modules is the embedded module tree persisted as a JSONB column. All
// curriculum mutations rewrite the column in a single UPDATE, keeping the
// course aggregate the unit of atomicity.
type Modules []Module

// Value implements driver.Valuer.
func (m Modules) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Modules) Scan(src interface{}) error {
	if src == nil {
		*m = Modules{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported modules column type %T", src)
	}
	return json.Unmarshal(raw, m)
}

// Course is the root content aggregate owning the module->lesson tree.
type Course struct {
	ID               string         `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	ShortDescription *string        `db:"short_description" json:"short_description,omitempty"`
	InstructorID     string         `db:"instructor_id" json:"instructor_id"`
	Category         string         `db:"category" json:"category"`
	Price            float64        `db:"price" json:"price"`
	ThumbnailURL     *string        `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Modules          Modules        `db:"modules" json:"modules"`
	Status           CourseStatus   `db:"status" json:"status"`
	Language         string         `db:"language" json:"language"`
	Level            string         `db:"level" json:"level"`
	Tags             pq.StringArray `db:"tags" json:"tags"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// TotalLessons counts lessons across all modules.
func (c *Course) TotalLessons() int {
	total := 0
	for _, module := range c.Modules {
		total += len(module.Lessons)
	}
	return total
}

// TotalDurationMinutes sums lesson durations across the tree.
func (c *Course) TotalDurationMinutes() int {
	total := 0
	for _, module := range c.Modules {
		for _, lesson := range module.Lessons {
			total += lesson.DurationMinutes
		}
	}
	return total
}

// CourseFilter captures the public catalog query parameters.
type CourseFilter struct {
	Category string
	Level    string
	Search   string
	Limit    int
	Skip     int
}
