package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/config"
	"github.com/medisuite/hms-api/internal/accesscontrol"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
	"github.com/medisuite/hms-api/pkg/security"
)

// Claims carried in access and refresh tokens. The role claim is the
// authoritative role for the lifetime of the token.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	cfg      config.JWTConfig
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, cfg config.JWTConfig) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		cfg:      cfg,
	}
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if user.Status != "active" {
		return nil, apperrors.Forbidden("account is not active")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	accessToken, err := s.generateToken(user, s.cfg.Secret, time.Duration(s.cfg.ExpiryHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateToken(user, s.cfg.RefreshSecret, time.Duration(s.cfg.RefreshExpiryHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Best effort; login succeeds without the timestamp.
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now())

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         user.Role,
		Dashboard:    accesscontrol.DashboardForRole(user.Role),
		User:         scrub(user),
	}, nil
}

// scrub returns a copy safe to hand to callers.
func scrub(user *model.User) *model.User {
	cp := *user
	cp.PasswordHash = ""
	return &cp
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("user no longer exists"))
	}

	if user.Status != "active" {
		return nil, apperrors.Forbidden("account is not active")
	}

	accessToken, err := s.generateToken(user, s.cfg.Secret, time.Duration(s.cfg.ExpiryHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefresh, err := s.generateToken(user, s.cfg.RefreshSecret, time.Duration(s.cfg.RefreshExpiryHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		Role:         user.Role,
		Dashboard:    accesscontrol.DashboardForRole(user.Role),
		User:         scrub(user),
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	return s.parseToken(token, s.cfg.Secret)
}

func (s *Service) generateToken(user *model.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *Service) parseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
