package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisuite/hms-api/config"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/pkg/security"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.Email] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (r *fakeUserRepo) List(_ context.Context, _ string) ([]*model.User, error) { return nil, nil }

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	for _, u := range r.users {
		if u.ID == id {
			u.LastLoginAt = &at
		}
	}
	return nil
}

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "access-secret",
		RefreshSecret:      "refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, hasher security.PasswordHasher, role, status string) *model.User {
	t.Helper()
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	u := &model.User{
		Email:        "doc@clinic.example",
		PasswordHash: hash,
		Name:         "Doc",
		Role:         role,
		Status:       status,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "doctor", resp.Role)
	assert.Equal(t, "/doctor", resp.Dashboard)
	require.NotNil(t, resp.User)
	assert.Empty(t, resp.User.PasswordHash)
}

func TestLoginUnknownRoleFallsBackToLogin(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "ghost", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "/login", resp.Dashboard)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newFakeUserRepo(), security.NewBcryptHasher(4), testConfig())

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@clinic.example",
		Password: "whatever",
	})
	require.Error(t, err)
}

func TestLoginInactiveUser(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "disabled")
	svc := NewService(repo, hasher, testConfig())

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.Error(t, err)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	user := seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
}

func TestValidateTokenRejectsRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	// Refresh tokens are signed with a different secret.
	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.Error(t, err)
}

func TestRefreshIssuesNewTokens(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	claims, err := svc.ValidateToken(context.Background(), refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "doctor", claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := security.NewBcryptHasher(4)
	seedUser(t, repo, hasher, "doctor", "active")
	svc := NewService(repo, hasher, testConfig())

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doc@clinic.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), resp.AccessToken)
	require.Error(t, err)
}
