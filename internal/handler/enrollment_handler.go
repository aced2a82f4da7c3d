package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgarud95/LearningX-version-10/internal/service"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
	"github.com/kgarud95/LearningX-version-10/pkg/response"
)

// EnrollmentHandler wires HTTP endpoints to the enrollment service.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	auth        *service.AuthService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, auth *service.AuthService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, auth: auth}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Create an enrollment for the caller
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body object true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	var payload struct {
		CourseID string `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "course_id is required"))
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), user.ID, payload.CourseID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ListOwn godoc
// @Summary List enrollments
// @Description Returns the caller's enrollments with course summaries
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListOwn(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	details, err := h.enrollments.ListOwn(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, details, nil)
}
