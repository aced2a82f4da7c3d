package models

import "time"

// UserRole represents the available roles on the platform.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// Auth provider tags recorded on each user.
const (
	ProviderEmail    = "email"
	ProviderGoogle   = "google"
	ProviderEmergent = "emergent"
)

// User represents an application user stored in the users table.
// PasswordHash is nil for users created through external identity flows.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	AuthProvider string    `db:"auth_provider" json:"auth_provider"`
	Active       bool      `db:"active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserInfo is the public projection of a user returned by the API.
type UserInfo struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	AuthProvider string    `json:"auth_provider"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Info returns the public projection of the user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		AvatarURL:    u.AvatarURL,
		Bio:          u.Bio,
		AuthProvider: u.AuthProvider,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
