package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/accesscontrol"
	"github.com/medisuite/hms-api/internal/model"
	"github.com/medisuite/hms-api/internal/repository"
	"github.com/medisuite/hms-api/internal/service/audit"
	apperrors "github.com/medisuite/hms-api/pkg/errors"
	"github.com/medisuite/hms-api/pkg/security"
)

type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	auditSvc *audit.Service
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, hasher: hasher, auditSvc: auditSvc}
}

func (s *Service) CreateUser(ctx context.Context, actorID uuid.UUID, req *model.CreateUserRequest) (*model.User, error) {
	if !accesscontrol.Valid(req.Role) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", req.Role), nil)
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		Phone:        req.Phone,
		Status:       "active",
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "user.create", "user", user.ID, map[string]string{
		"email": user.Email,
		"role":  user.Role,
	})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, actorID, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	if req.Role != nil {
		if !accesscontrol.Valid(*req.Role) {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", *req.Role), nil)
		}
		user.Role = *req.Role
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.auditSvc.Log(ctx, actorID, "user.update", "user", user.ID, req)
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperrors.BadRequest("cannot delete your own account", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("user", err)
	}
	s.auditSvc.Log(ctx, actorID, "user.delete", "user", id, nil)
	return nil
}

func (s *Service) ListUsers(ctx context.Context, role string) ([]*model.User, error) {
	if role != "" && !accesscontrol.Valid(role) {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown role %q", role), nil)
	}
	users, err := s.repo.List(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
