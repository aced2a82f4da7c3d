package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Enrollment is a user's claim on a course. ProgressPercentage and
// LastAccessed are the only fields mutated after creation.
type Enrollment struct {
	ID                 string           `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	CourseID           string           `db:"course_id" json:"course_id"`
	EnrollmentDate     time.Time        `db:"enrollment_date" json:"enrollment_date"`
	CompletionDate     *time.Time       `db:"completion_date" json:"completion_date,omitempty"`
	Status             EnrollmentStatus `db:"status" json:"status"`
	ProgressPercentage float64          `db:"progress_percentage" json:"progress_percentage"`
	LastAccessed       *time.Time       `db:"last_accessed" json:"last_accessed,omitempty"`
	PaymentID          *string          `db:"payment_id" json:"payment_id,omitempty"`
}

// EnrollmentDetail enriches Enrollment with course and instructor info.
type EnrollmentDetail struct {
	Enrollment
	CourseTitle     string  `db:"course_title" json:"course_title"`
	CourseThumbnail *string `db:"course_thumbnail" json:"course_thumbnail,omitempty"`
	InstructorName  string  `db:"instructor_name" json:"instructor_name"`
}

// EnrollmentReportRow enriches Enrollment with the learner's identity for
// instructor-facing progress reports.
type EnrollmentReportRow struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}
