package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgarud95/LearningX-version-10/internal/models"
	"github.com/kgarud95/LearningX-version-10/internal/service"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
	"github.com/kgarud95/LearningX-version-10/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth, identity and session services.
type AuthHandler struct {
	auth     *service.AuthService
	identity *service.IdentityService
	sessions *service.SessionService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, identity *service.IdentityService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{auth: auth, identity: identity, sessions: sessions}
}

// Register godoc
// @Summary Register account
// @Description Create an email/password account and return an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// EmergentSession godoc
// @Summary Exchange managed-auth session
// @Description Verify an Emergent session ID, provision the user and open a revocable session
// @Tags Authentication
// @Produce json
// @Param session_id query string true "Session ID from the managed-auth redirect"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/session [post]
func (h *AuthHandler) EmergentSession(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = c.GetHeader("X-Session-ID")
	}

	identity, err := h.identity.VerifyEmergentSession(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.identity.FindOrCreateUser(c.Request.Context(), identity, models.ProviderEmergent)
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), user.ID, identity.SessionToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.auth.IssueToken(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil, map[string]interface{}{
		"session_token": session.SessionToken,
	})
}

// Google godoc
// @Summary Authenticate with Google
// @Description Exchange an OAuth authorization code for an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.GoogleAuthRequest true "OAuth code payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/google [post]
func (h *AuthHandler) Google(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid google auth payload"))
		return
	}

	identity, err := h.identity.VerifyGoogleCode(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.identity.FindOrCreateUser(c.Request.Context(), identity, models.ProviderGoogle)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.auth.IssueToken(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user.Info(), nil)
}

// Logout godoc
// @Summary Logout
// @Description Invalidate the server-side session. Access tokens stay valid until they expire.
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if token := c.GetHeader("X-Session-Token"); token != "" {
		if err := h.sessions.Invalidate(c.Request.Context(), token); err != nil {
			response.Error(c, err)
			return
		}
	}

	response.NoContent(c)
}

// GetUser godoc
// @Summary Get user profile
// @Description Returns a user's public profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	info, err := h.auth.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, info, nil)
}
