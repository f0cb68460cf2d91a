package users

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lifeup-app/lifeup-api/internal/auth"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Service wraps user-management business rules.
type Service struct {
	repo  Repository
	roles roles.Repository
}

// NewService constructs a new Service.
func NewService(repo Repository, roleRepo roles.Repository) *Service {
	return &Service{repo: repo, roles: roleRepo}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one user.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateInput carries the fields for an admin-created account.
type CreateInput struct {
	Email     string
	Name      string
	Password  string
	RoleID    string
	IsPremium bool
}

// Create inserts an account on an explicit role, validating the role exists.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if _, err := s.roles.FindByID(ctx, in.RoleID); err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			return nil, shared.ErrValidation
		}
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		ID:        uuid.NewString(),
		Email:     shared.NormalizeEmail(in.Email),
		Name:      shared.SanitizeName(in.Name),
		RoleID:    in.RoleID,
		IsPremium: in.IsPremium,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, user, hash); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateInput carries optional field changes; nil means keep.
type UpdateInput struct {
	Email     *string
	Name      *string
	RoleID    *string
	IsPremium *bool
}

// Update applies partial changes to an account.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = shared.NormalizeEmail(*in.Email)
	}
	if in.Name != nil {
		user.Name = shared.SanitizeName(*in.Name)
	}
	if in.RoleID != nil {
		if _, err := s.roles.FindByID(ctx, *in.RoleID); err != nil {
			if errors.Is(err, shared.ErrRoleNotFound) {
				return nil, shared.ErrValidation
			}
			return nil, err
		}
		user.RoleID = *in.RoleID
	}
	if in.IsPremium != nil {
		user.IsPremium = *in.IsPremium
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Deactivate disables an account without deleting it. Already-issued tokens
// keep verifying until expiry, but login and refresh are cut off.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}
