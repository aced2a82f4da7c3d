package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/middleware"
	"github.com/kgarud95/LearningX-version-10/internal/models"
	"github.com/kgarud95/LearningX-version-10/internal/service"
)

type userStoreMock struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newUserStoreMock() *userStoreMock {
	return &userStoreMock{byEmail: make(map[string]*models.User), byID: make(map[string]*models.User)}
}

func (m *userStoreMock) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userStoreMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *userStoreMock) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "u1"
	}
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

type sessionStoreMock struct {
	invalidated []string
}

func (m *sessionStoreMock) Create(ctx context.Context, session *models.Session) error {
	session.IsActive = true
	return nil
}

func (m *sessionStoreMock) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	return nil, sql.ErrNoRows
}

func (m *sessionStoreMock) Invalidate(ctx context.Context, token string) error {
	m.invalidated = append(m.invalidated, token)
	return nil
}

func testAuthHandler(store *userStoreMock, sessions *sessionStoreMock) *AuthHandler {
	auth := service.NewAuthService(store, nil, zap.NewNop(), service.AuthConfig{
		Secret: "secret",
		Expiry: 30 * time.Minute,
	})
	sessionSvc := service.NewSessionService(sessions, zap.NewNop(), 24*time.Hour)
	return NewAuthHandler(auth, nil, sessionSvc)
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testAuthHandler(newUserStoreMock(), &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"email":"ada@example.com","password":"secret123","name":"Ada"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "ada@example.com", envelope.Data.User.Email)
	assert.Equal(t, models.RoleStudent, envelope.Data.User.Role)
}

func TestAuthHandlerRegisterDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newUserStoreMock()
	store.byEmail["ada@example.com"] = &models.User{ID: "u1", Email: "ada@example.com"}
	handler := testAuthHandler(store, &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"email":"ada@example.com","password":"secret123","name":"Ada"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testAuthHandler(newUserStoreMock(), &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testAuthHandler(newUserStoreMock(), &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"email":"ghost@example.com","password":"whatever1"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newUserStoreMock()
	store.byID["u1"] = &models.User{ID: "u1", Email: "ada@example.com", Name: "Ada", Role: models.RoleStudent}
	handler := testAuthHandler(store, &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		Email:            "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testAuthHandler(newUserStoreMock(), &sessionStoreMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	handler.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLogoutInvalidatesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := &sessionStoreMock{}
	handler := testAuthHandler(newUserStoreMock(), sessions)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("X-Session-Token", "tok-1")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"tok-1"}, sessions.invalidated)
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newUserStoreMock()
	auth := service.NewAuthService(store, nil, zap.NewNop(), service.AuthConfig{Secret: "secret", Expiry: time.Minute})

	router := gin.New()
	router.GET("/protected", middleware.JWT(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewarePassesValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newUserStoreMock()
	auth := service.NewAuthService(store, nil, zap.NewNop(), service.AuthConfig{Secret: "secret", Expiry: time.Minute})

	token, err := auth.IssueToken(&models.User{ID: "u1", Email: "ada@example.com"})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", middleware.JWT(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
