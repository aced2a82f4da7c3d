package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

type curriculumCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByModuleID(ctx context.Context, moduleID string) (*models.Course, error)
	FindByLessonID(ctx context.Context, lessonID string) (*models.Course, error)
	ReplaceModules(ctx context.Context, courseID string, modules models.Modules, updatedAt time.Time) error
}

type curriculumEnrollmentRepository interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
}

type curriculumProgressRepository interface {
	DeleteByLessonIDs(ctx context.Context, lessonIDs []string) error
	ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]models.LessonProgress, error)
}

// CurriculumService mutates and reads the module->lesson tree embedded in
// each course. Positions are append-only: a new entry gets len+1 and
// deletions never renumber the survivors, so order values are stable
// identifiers rather than dense ranks.
type CurriculumService struct {
	courses     curriculumCourseRepository
	enrollments curriculumEnrollmentRepository
	progress    curriculumProgressRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCurriculumService constructs a CurriculumService instance.
func NewCurriculumService(courses curriculumCourseRepository, enrollments curriculumEnrollmentRepository, progress curriculumProgressRepository, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CurriculumService{courses: courses, enrollments: enrollments, progress: progress, validator: validate, logger: logger}
}

// AddModule appends a module to the course tree.
func (s *CurriculumService) AddModule(ctx context.Context, userID string, role models.UserRole, courseID string, req dto.CreateModuleRequest) (*dto.ModuleItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	course, err := s.ownedCourse(ctx, userID, role, courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	module := models.Module{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Lessons:     []models.Lesson{},
		Order:       len(course.Modules) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	course.Modules = append(course.Modules, module)
	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save module")
	}

	item := moduleItem(course.ID, module)
	return &item, nil
}

// ListModules returns the modules of a course with derived totals.
func (s *CurriculumService) ListModules(ctx context.Context, courseID string) ([]dto.ModuleItem, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ModuleItem, 0, len(course.Modules))
	for _, module := range course.Modules {
		items = append(items, moduleItem(course.ID, module))
	}
	return items, nil
}

// UpdateModule applies a partial update to a module.
func (s *CurriculumService) UpdateModule(ctx context.Context, userID string, role models.UserRole, moduleID string, req dto.UpdateModuleRequest) (*dto.ModuleItem, error) {
	course, idx, err := s.ownedModule(ctx, userID, role, moduleID)
	if err != nil {
		return nil, err
	}

	module := &course.Modules[idx]
	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = req.Description
	}
	module.UpdatedAt = time.Now().UTC()

	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, module.UpdatedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save module")
	}

	item := moduleItem(course.ID, *module)
	return &item, nil
}

// DeleteModule removes a module and every progress row for its lessons.
// Sibling order values are left untouched.
func (s *CurriculumService) DeleteModule(ctx context.Context, userID string, role models.UserRole, moduleID string) error {
	course, idx, err := s.ownedModule(ctx, userID, role, moduleID)
	if err != nil {
		return err
	}

	lessonIDs := make([]string, 0, len(course.Modules[idx].Lessons))
	for _, lesson := range course.Modules[idx].Lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	course.Modules = append(course.Modules[:idx], course.Modules[idx+1:]...)
	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}

	if err := s.progress.DeleteByLessonIDs(ctx, lessonIDs); err != nil {
		s.logger.Warn("failed to purge progress for deleted module",
			zap.String("module_id", moduleID), zap.Error(err))
	}

	return nil
}

// AddLesson appends a lesson to a module.
func (s *CurriculumService) AddLesson(ctx context.Context, userID string, role models.UserRole, moduleID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	course, idx, err := s.ownedModule(ctx, userID, role, moduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	module := &course.Modules[idx]
	lesson := models.Lesson{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		Type:            req.Type,
		DurationMinutes: req.DurationMinutes,
		Order:           len(module.Lessons) + 1,
		IsFree:          req.IsFree,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	module.Lessons = append(module.Lessons, lesson)
	module.UpdatedAt = now
	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lesson")
	}

	return &lesson, nil
}

// GetLesson returns a lesson. Free lessons are open to anyone; paid content
// requires enrollment unless the caller owns the course.
func (s *CurriculumService) GetLesson(ctx context.Context, userID string, role models.UserRole, lessonID string) (*models.Lesson, error) {
	course, mi, li, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	lesson := course.Modules[mi].Lessons[li]
	if lesson.IsFree || course.InstructorID == userID || role == models.RoleAdmin {
		return &lesson, nil
	}

	if err := s.requireEnrollment(ctx, userID, course.ID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// UpdateLesson applies a partial update to a lesson. Order is immutable.
func (s *CurriculumService) UpdateLesson(ctx context.Context, userID string, role models.UserRole, lessonID string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	course, mi, li, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}

	lesson := &course.Modules[mi].Lessons[li]
	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.Description != nil {
		lesson.Description = req.Description
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.DurationMinutes != nil {
		lesson.DurationMinutes = *req.DurationMinutes
	}
	if req.IsFree != nil {
		lesson.IsFree = *req.IsFree
	}
	lesson.UpdatedAt = time.Now().UTC()

	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, lesson.UpdatedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lesson")
	}

	updated := *lesson
	return &updated, nil
}

// DeleteLesson removes a lesson and its progress rows. Sibling order values
// are left untouched.
func (s *CurriculumService) DeleteLesson(ctx context.Context, userID string, role models.UserRole, lessonID string) error {
	course, mi, li, err := s.findLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}

	module := &course.Modules[mi]
	module.Lessons = append(module.Lessons[:li], module.Lessons[li+1:]...)
	module.UpdatedAt = time.Now().UTC()

	if err := s.courses.ReplaceModules(ctx, course.ID, course.Modules, module.UpdatedAt); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}

	if err := s.progress.DeleteByLessonIDs(ctx, []string{lessonID}); err != nil {
		s.logger.Warn("failed to purge progress for deleted lesson",
			zap.String("lesson_id", lessonID), zap.Error(err))
	}

	return nil
}

// Structure returns the full course tree with the caller's progress merged
// in. Enrollment is required for everyone, the course instructor included.
func (s *CurriculumService) Structure(ctx context.Context, userID, courseID string) (*dto.CourseStructure, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}

	rows, err := s.progress.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}

	progressByLesson := make(map[string]dto.LessonProgressInfo, len(rows))
	for _, row := range rows {
		progressByLesson[row.LessonID] = dto.LessonProgressInfo{
			Completed:        row.Completed,
			TimeSpentMinutes: row.TimeSpentMinutes,
			LastPosition:     row.LastPosition,
			CompletionDate:   row.CompletionDate,
		}
	}

	items := make([]dto.ModuleItem, 0, len(course.Modules))
	for _, module := range course.Modules {
		items = append(items, moduleItem(course.ID, module))
	}

	return &dto.CourseStructure{
		Course:               *course,
		Modules:              items,
		TotalModules:         len(course.Modules),
		TotalLessons:         course.TotalLessons(),
		TotalDurationMinutes: course.TotalDurationMinutes(),
		UserProgress:         progressByLesson,
	}, nil
}

// LearningSession resolves the caller's position in a course: the current
// lesson plus its neighbors in flattened module-then-lesson order. When no
// lesson is named the first incomplete one is chosen.
func (s *CurriculumService) LearningSession(ctx context.Context, userID, courseID string, currentLessonID *string) (*dto.LearningSession, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.requireEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}

	rows, err := s.progress.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress")
	}

	progressByLesson := make(map[string]models.LessonProgress, len(rows))
	for _, row := range rows {
		progressByLesson[row.LessonID] = row
	}

	var flat []models.Lesson
	for _, module := range course.Modules {
		flat = append(flat, module.Lessons...)
	}

	session := &dto.LearningSession{
		CourseID:     courseID,
		UserProgress: progressByLesson,
	}
	if len(flat) == 0 {
		return session, nil
	}

	currentIdx := -1
	if currentLessonID != nil && *currentLessonID != "" {
		for i, lesson := range flat {
			if lesson.ID == *currentLessonID {
				currentIdx = i
				break
			}
		}
		if currentIdx == -1 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found in course")
		}
	} else {
		// Resume at the first incomplete lesson, or back at the start when
		// the course is fully completed.
		currentIdx = 0
		for i, lesson := range flat {
			if progress, ok := progressByLesson[lesson.ID]; !ok || !progress.Completed {
				currentIdx = i
				break
			}
		}
	}

	current := flat[currentIdx]
	session.CurrentLessonID = &current.ID
	if currentIdx+1 < len(flat) {
		next := flat[currentIdx+1]
		session.NextLesson = &next
	}
	if currentIdx > 0 {
		previous := flat[currentIdx-1]
		session.PreviousLesson = &previous
	}

	return session, nil
}

func (s *CurriculumService) findCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *CurriculumService) ownedCourse(ctx context.Context, userID string, role models.UserRole, courseID string) (*models.Course, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}
	return course, nil
}

func (s *CurriculumService) ownedModule(ctx context.Context, userID string, role models.UserRole, moduleID string) (*models.Course, int, error) {
	course, err := s.courses.FindByModuleID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if course.InstructorID != userID && role != models.RoleAdmin {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "not the course instructor")
	}
	for i := range course.Modules {
		if course.Modules[i].ID == moduleID {
			return course, i, nil
		}
	}
	return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "module not found")
}

func (s *CurriculumService) findLesson(ctx context.Context, lessonID string) (*models.Course, int, int, error) {
	course, err := s.courses.FindByLessonID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, 0, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	for mi := range course.Modules {
		for li := range course.Modules[mi].Lessons {
			if course.Modules[mi].Lessons[li].ID == lessonID {
				return course, mi, li, nil
			}
		}
	}
	return nil, 0, 0, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
}

func (s *CurriculumService) requireEnrollment(ctx context.Context, userID, courseID string) error {
	if _, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this course")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return nil
}

func moduleItem(courseID string, module models.Module) dto.ModuleItem {
	total := 0
	for _, lesson := range module.Lessons {
		total += lesson.DurationMinutes
	}
	return dto.ModuleItem{
		Module:               module,
		CourseID:             courseID,
		TotalLessons:         len(module.Lessons),
		TotalDurationMinutes: total,
	}
}
