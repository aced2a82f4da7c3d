package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

// SessionRepository stores server-side sessions issued for externally
// verified identities. Rows are never deleted, only deactivated.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new active session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	session.IsActive = true

	const query = `INSERT INTO sessions (id, user_id, session_token, created_at, expires_at, is_active) VALUES (:id, :user_id, :session_token, :created_at, :expires_at, :is_active)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindActiveByToken returns the session for a token when it is still active
// and unexpired at the given instant.
func (r *SessionRepository) FindActiveByToken(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	const query = `SELECT id, user_id, session_token, created_at, expires_at, is_active FROM sessions WHERE session_token = $1 AND is_active = TRUE AND expires_at > $2 LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, token, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Invalidate deactivates the session for a token. Idempotent.
func (r *SessionRepository) Invalidate(ctx context.Context, token string) error {
	const query = `UPDATE sessions SET is_active = FALSE WHERE session_token = $1`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
