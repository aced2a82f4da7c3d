package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kgarud95/LearningX-version-10/internal/models"
	appErrors "github.com/kgarud95/LearningX-version-10/pkg/errors"
)

type mockUserStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: make(map[string]*models.User), byID: make(map[string]*models.User)}
}

func (m *mockUserStore) add(user *models.User) {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated-id"
	}
	m.add(user)
	m.created = append(m.created, user)
	return nil
}

func testAuthService(repo authUserRepository) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:    "secret",
		Algorithm: "HS256",
		Expiry:    30 * time.Minute,
	})
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockUserStore()
	svc := testAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "student@example.com",
		Name:     "Student",
		Password: "password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].PasswordHash)
	assert.NotEqual(t, "password", *repo.created[0].PasswordHash)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserStore()
	repo.add(&models.User{ID: "u1", Email: "taken@example.com"})
	svc := testAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Name:     "Someone",
		Password: "password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	passwordHash := string(hash)
	repo := newMockUserStore()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: &passwordHash, Role: models.RoleStudent, Active: true})
	svc := testAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "u1", res.User.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	passwordHash := string(hash)
	repo := newMockUserStore()
	repo.add(&models.User{ID: "u1", Email: "user@example.com", PasswordHash: &passwordHash})
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginPasswordlessAccount(t *testing.T) {
	repo := newMockUserStore()
	repo.add(&models.User{ID: "u1", Email: "oauth@example.com", PasswordHash: nil, AuthProvider: models.ProviderGoogle})
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "oauth@example.com", Password: "anything"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	repo := newMockUserStore()
	user := &models.User{ID: "u1", Email: "user@example.com"}
	repo.add(user)
	svc := testAuthService(repo)

	res, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestAuthServiceValidateTokenTampered(t *testing.T) {
	svc := testAuthService(newMockUserStore())

	res, err := svc.IssueToken(&models.User{ID: "u1", Email: "user@example.com"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(newMockUserStore(), validator.New(), zap.NewNop(), AuthConfig{
		Secret:    "secret",
		Algorithm: "HS256",
		Expiry:    -time.Minute,
	})

	res, err := svc.IssueToken(&models.User{ID: "u1", Email: "user@example.com"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	require.Error(t, err)
}

func TestAuthServiceValidateTokenMissingSubject(t *testing.T) {
	svc := testAuthService(newMockUserStore())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceValidateTokenWrongAlgorithm(t *testing.T) {
	svc := testAuthService(newMockUserStore())

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceCurrentUserGone(t *testing.T) {
	svc := testAuthService(newMockUserStore())

	_, err := svc.CurrentUser(context.Background(), &models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "missing"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
}
