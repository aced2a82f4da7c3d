package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgarud95/LearningX-version-10/internal/models"
)

func TestSessionCreateForcesActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{UserID: "u1", SessionToken: "tok", ExpiresAt: time.Now().Add(time.Hour), IsActive: false}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.True(t, session.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindActiveByToken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "session_token", "created_at", "expires_at", "is_active"}).
		AddRow("s1", "u1", "tok", now, now.Add(time.Hour), true)
	mock.ExpectQuery("SELECT .+ FROM sessions WHERE session_token = .+ AND is_active = TRUE AND expires_at >").
		WithArgs("tok", now).
		WillReturnRows(rows)

	session, err := repo.FindActiveByToken(context.Background(), "tok", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionFindActiveByTokenNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM sessions").
		WithArgs("missing", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByToken(context.Background(), "missing", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSessionInvalidate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE sessions SET is_active = FALSE").
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Invalidate(context.Background(), "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
