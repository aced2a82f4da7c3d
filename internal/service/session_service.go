package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

type sessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error)
	Invalidate(ctx context.Context, token string) error
}

// SessionService manages revocable server-side sessions backing the
// managed-auth flow. Unlike access tokens these can be invalidated.
type SessionService struct {
	repo   sessionRepository
	logger *zap.Logger
	ttl    time.Duration
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(repo sessionRepository, logger *zap.Logger, ttl time.Duration) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionService{repo: repo, logger: logger, ttl: ttl}
}

// Create records an active session for the user with the provider token.
func (s *SessionService) Create(ctx context.Context, userID, sessionToken string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		UserID:       userID,
		SessionToken: sessionToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// Verify returns the session for a token if it is active and unexpired.
func (s *SessionService) Verify(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.repo.FindActiveByToken(ctx, token, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session is invalid or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Invalidate deactivates the session for a token. Safe to call repeatedly.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Invalidate(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate session")
	}
	return nil
}
