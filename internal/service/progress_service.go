package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
	"github.com/kgarud95/LearningX-version-10/pkg/export"
)

// Report formats accepted by ExportReport.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type progressRepository interface {
	FindByUserAndLesson(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error)
	Create(ctx context.Context, progress *models.LessonProgress) error
	Update(ctx context.Context, progress *models.LessonProgress) error
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]models.LessonProgress, error)
	CountCompleted(ctx context.Context, userID, courseID string) (int, error)
}

type progressCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByLessonID(ctx context.Context, lessonID string) (*models.Course, error)
}

type progressEnrollmentRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, userID, courseID string, percentage float64, lastAccessed time.Time) error
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentReportRow, error)
}

// ProgressService records per-lesson activity and derives course-level
// completion. Recording progress deliberately skips the enrollment check:
// the write path only needs the lesson to exist, and the percentage write
// silently affects zero rows for unenrolled users.
type ProgressService struct {
	progress    progressRepository
	courses     progressCourseRepository
	enrollments progressEnrollmentRepository
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgressService constructs a ProgressService instance.
func NewProgressService(progress progressRepository, courses progressCourseRepository, enrollments progressEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgressService{
		progress:    progress,
		courses:     courses,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		validator:   validate,
		logger:      logger,
	}
}

// Record upserts the user's progress on a lesson and recomputes the course
// percentage. CompletionDate is written once on the false to true transition
// and never cleared afterwards.
func (s *ProgressService) Record(ctx context.Context, userID string, req dto.ProgressUpdateRequest) (*models.LessonProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload")
	}

	course, err := s.courses.FindByLessonID(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	now := time.Now().UTC()

	record, err := s.progress.FindByUserAndLesson(ctx, userID, req.LessonID)
	switch {
	case err == nil:
		record.TimeSpentMinutes = req.TimeSpentMinutes
		if req.LastPosition != nil {
			record.LastPosition = req.LastPosition
		}
		if req.Completed && !record.Completed {
			record.CompletionDate = &now
		}
		record.Completed = req.Completed
		if err := s.progress.Update(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
		}
	case errors.Is(err, sql.ErrNoRows):
		record = &models.LessonProgress{
			UserID:           userID,
			CourseID:         course.ID,
			LessonID:         req.LessonID,
			Completed:        req.Completed,
			TimeSpentMinutes: req.TimeSpentMinutes,
			LastPosition:     req.LastPosition,
		}
		if req.Completed {
			record.CompletionDate = &now
		}
		if err := s.progress.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create progress")
		}
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}

	if err := s.recomputeCourseProgress(ctx, userID, course, now); err != nil {
		s.logger.Warn("failed to recompute course progress",
			zap.String("user_id", userID),
			zap.String("course_id", course.ID),
			zap.Error(err))
	}

	return record, nil
}

// CourseProgress returns the caller's aggregate progress in a course.
// Requires enrollment.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID string) (*dto.CourseProgress, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	rows, err := s.progress.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list progress")
	}
	if rows == nil {
		rows = []models.LessonProgress{}
	}

	return &dto.CourseProgress{
		CourseID:        courseID,
		OverallProgress: enrollment.ProgressPercentage,
		LastAccessed:    enrollment.LastAccessed,
		LessonProgress:  rows,
	}, nil
}

// ExportReport renders the per-student progress table for a course in CSV or
// PDF form. Restricted to the course instructor.
func (s *ProgressService) ExportReport(ctx context.Context, userID string, role models.UserRole, courseID, format string) ([]byte, string, string, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", "", appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, "", "", appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}

	rows, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	data := export.Dataset{
		Headers: []string{"Student", "Email", "Status", "Progress %", "Enrolled", "Completed"},
	}
	for _, row := range rows {
		completed := ""
		if row.CompletionDate != nil {
			completed = row.CompletionDate.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student":    row.StudentName,
			"Email":      row.StudentEmail,
			"Status":     string(row.Status),
			"Progress %": fmt.Sprintf("%.1f", row.ProgressPercentage),
			"Enrolled":   row.EnrollmentDate.Format("2006-01-02"),
			"Completed":  completed,
		})
	}

	switch strings.ToLower(format) {
	case ReportFormatPDF:
		payload, err := s.pdf.Render(data, fmt.Sprintf("Progress Report - %s", course.Title))
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return payload, "application/pdf", fmt.Sprintf("progress-%s.pdf", courseID), nil
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return payload, "text/csv", fmt.Sprintf("progress-%s.csv", courseID), nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}

// recomputeCourseProgress derives percentage from completed lessons over the
// course total. Courses without lessons are left untouched.
func (s *ProgressService) recomputeCourseProgress(ctx context.Context, userID string, course *models.Course, at time.Time) error {
	total := course.TotalLessons()
	if total == 0 {
		return nil
	}

	completed, err := s.progress.CountCompleted(ctx, userID, course.ID)
	if err != nil {
		return err
	}

	percentage := float64(completed) / float64(total) * 100
	return s.enrollments.UpdateProgress(ctx, userID, course.ID, percentage, at)
}
