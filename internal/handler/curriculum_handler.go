package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/service"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
	"github.com/kgarud95/LearningX-version-10/pkg/response"
)

// CurriculumHandler wires HTTP endpoints to the curriculum service.
type CurriculumHandler struct {
	curriculum *service.CurriculumService
	auth       *service.AuthService
}

// NewCurriculumHandler creates a new handler.
func NewCurriculumHandler(curriculum *service.CurriculumService, auth *service.AuthService) *CurriculumHandler {
	return &CurriculumHandler{curriculum: curriculum, auth: auth}
}

// AddModule godoc
// @Summary Add module
// @Description Append a module to the course
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/modules [post]
func (h *CurriculumHandler) AddModule(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	item, err := h.curriculum.AddModule(c.Request.Context(), user.ID, user.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// ListModules godoc
// @Summary List modules
// @Description Returns the modules of a course with derived totals
// @Tags Curriculum
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/modules [get]
func (h *CurriculumHandler) ListModules(c *gin.Context) {
	items, err := h.curriculum.ListModules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateModule godoc
// @Summary Update module
// @Description Apply a partial update to a module
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body dto.UpdateModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [put]
func (h *CurriculumHandler) UpdateModule(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid module payload"))
		return
	}

	item, err := h.curriculum.UpdateModule(c.Request.Context(), user.ID, user.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteModule godoc
// @Summary Delete module
// @Description Remove a module and its lessons' progress records
// @Tags Curriculum
// @Produce json
// @Param id path string true "Module ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id} [delete]
func (h *CurriculumHandler) DeleteModule(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.curriculum.DeleteModule(c.Request.Context(), user.ID, user.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddLesson godoc
// @Summary Add lesson
// @Description Append a lesson to a module
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param payload body dto.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /modules/{id}/lessons [post]
func (h *CurriculumHandler) AddLesson(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}

	lesson, err := h.curriculum.AddLesson(c.Request.Context(), user.ID, user.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, lesson)
}

// GetLesson godoc
// @Summary Get lesson
// @Description Returns a lesson. Paid content requires enrollment.
// @Tags Curriculum
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *CurriculumHandler) GetLesson(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	lesson, err := h.curriculum.GetLesson(c.Request.Context(), user.ID, user.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, lesson, nil)
}

// UpdateLesson godoc
// @Summary Update lesson
// @Description Apply a partial update to a lesson
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *CurriculumHandler) UpdateLesson(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}

	lesson, err := h.curriculum.UpdateLesson(c.Request.Context(), user.ID, user.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, lesson, nil)
}

// DeleteLesson godoc
// @Summary Delete lesson
// @Description Remove a lesson and its progress records
// @Tags Curriculum
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [delete]
func (h *CurriculumHandler) DeleteLesson(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.curriculum.DeleteLesson(c.Request.Context(), user.ID, user.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Structure godoc
// @Summary Course structure
// @Description Returns the full course tree with the caller's progress merged in
// @Tags Curriculum
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/structure [get]
func (h *CurriculumHandler) Structure(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	structure, err := h.curriculum.Structure(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, structure, nil)
}

// Learn godoc
// @Summary Learning session
// @Description Resolves the caller's position in the course with next and previous lessons
// @Tags Curriculum
// @Produce json
// @Param id path string true "Course ID"
// @Param lesson_id query string false "Current lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/learn [get]
func (h *CurriculumHandler) Learn(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var current *string
	if lessonID := c.Query("lesson_id"); lessonID != "" {
		current = &lessonID
	}

	session, err := h.curriculum.LearningSession(c.Request.Context(), user.ID, c.Param("id"), current)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, session, nil)
}
