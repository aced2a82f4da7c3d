package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

type identityUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// IdentityConfig defines the external provider endpoints and credentials.
type IdentityConfig struct {
	EmergentSessionURL string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleTokenURL     string
	GoogleUserInfoURL  string
}

// IdentityService verifies identities against external providers and
// resolves them to local user accounts. All outbound calls run on a
// bounded-timeout client so a slow provider cannot wedge request handlers.
type IdentityService struct {
	repo      identityUserRepository
	client    *http.Client
	validator *validator.Validate
	logger    *zap.Logger
	config    IdentityConfig
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(repo identityUserRepository, client *http.Client, validate *validator.Validate, logger *zap.Logger, config IdentityConfig) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &IdentityService{repo: repo, client: client, validator: validate, logger: logger, config: config}
}

// VerifyEmergentSession exchanges a managed-auth session ID for the
// authenticated profile behind it.
func (s *IdentityService) VerifyEmergentSession(ctx context.Context, sessionID string) (*models.ExternalIdentity, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.EmergentSessionURL, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build session request")
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, fmt.Sprintf("session verification failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("session exchange rejected", zap.Int("status", resp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session id")
	}

	var identity models.ExternalIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode session payload")
	}
	if identity.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session payload missing email")
	}

	return &identity, nil
}

// VerifyGoogleCode exchanges an OAuth authorization code for the Google
// profile it represents. Two round trips: code for token, token for profile.
func (s *IdentityService) VerifyGoogleCode(ctx context.Context, authReq models.GoogleAuthRequest) (*models.ExternalIdentity, error) {
	if err := s.validator.Struct(authReq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid google auth payload")
	}

	form := url.Values{}
	form.Set("code", authReq.Code)
	form.Set("client_id", s.config.GoogleClientID)
	form.Set("client_secret", s.config.GoogleClientSecret)
	form.Set("redirect_uri", authReq.RedirectURI)
	form.Set("grant_type", "authorization_code")

	tokenReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GoogleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build token request")
	}
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	tokenResp, err := s.client.Do(tokenReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, fmt.Sprintf("google code exchange failed: %v", err))
	}
	defer tokenResp.Body.Close()

	if tokenResp.StatusCode != http.StatusOK {
		s.logger.Warn("google code exchange rejected", zap.Int("status", tokenResp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "failed to exchange authorization code")
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode token payload")
	}
	if token.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "failed to exchange authorization code")
	}

	infoReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.GoogleUserInfoURL, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build userinfo request")
	}
	infoReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	infoResp, err := s.client.Do(infoReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, fmt.Sprintf("google profile fetch failed: %v", err))
	}
	defer infoResp.Body.Close()

	if infoResp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "failed to fetch google profile")
	}

	var identity models.ExternalIdentity
	if err := json.NewDecoder(infoResp.Body).Decode(&identity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode google profile")
	}
	if identity.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "google profile missing email")
	}

	return &identity, nil
}

// FindOrCreateUser maps an external identity to a local account keyed by
// email, creating a passwordless student account on first sight.
func (s *IdentityService) FindOrCreateUser(ctx context.Context, identity *models.ExternalIdentity, provider string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
	}

	user = &models.User{
		Email:        identity.Email,
		Name:         identity.Name,
		Role:         models.RoleStudent,
		AuthProvider: provider,
		Active:       true,
	}
	if identity.Picture != "" {
		picture := identity.Picture
		user.AvatarURL = &picture
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("provisioned user from external identity",
		zap.String("provider", provider),
		zap.String("user_id", user.ID))

	return user, nil
}
