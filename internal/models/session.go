package models

import "time"

// Session is the server-side revocable credential used by the external
// identity flow. It is independent of the signed access token: invalidating
// a session never touches issued JWTs. Sessions are deactivated, not deleted.
type Session struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	SessionToken string    `db:"session_token" json:"session_token"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}
