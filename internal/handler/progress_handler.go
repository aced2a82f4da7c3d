package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgarud95/LearningX-version-10/internal/dto"
	"github.com/kgarud95/LearningX-version-10/internal/service"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
	"github.com/kgarud95/LearningX-version-10/pkg/response"
)

// ProgressHandler wires HTTP endpoints to the progress service.
type ProgressHandler struct {
	progress *service.ProgressService
	auth     *service.AuthService
}

// NewProgressHandler creates a new handler.
func NewProgressHandler(progress *service.ProgressService, auth *service.AuthService) *ProgressHandler {
	return &ProgressHandler{progress: progress, auth: auth}
}

// Record godoc
// @Summary Record lesson progress
// @Description Upsert the caller's progress on a lesson and recompute the course percentage
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body dto.ProgressUpdateRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /progress [post]
func (h *ProgressHandler) Record(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	record, err := h.progress.Record(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// CourseProgress godoc
// @Summary Course progress
// @Description Returns the caller's aggregate progress in a course
// @Tags Progress
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/progress [get]
func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	progress, err := h.progress.CourseProgress(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, progress, nil)
}

// ExportReport godoc
// @Summary Export progress report
// @Description Download the per-student progress table as CSV or PDF. Instructor only.
// @Tags Progress
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/progress/export [get]
func (h *ProgressHandler) ExportReport(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, contentType, filename, err := h.progress.ExportReport(c.Request.Context(), user.ID, user.Role, c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
