package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/roles"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Service wraps authentication business rules: login, registration, and
// refresh-token rotation.
type Service struct {
	users  Repository
	roles  roles.Repository
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(users Repository, roleRepo roles.Repository, tokens *TokenIssuer) *Service {
	return &Service{users: users, roles: roleRepo, tokens: tokens}
}

// Login validates email/password credentials and issues a token pair.
// Unknown identity and wrong password collapse into one error so callers
// cannot enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = shared.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrAccountDeactivated
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			// The account references a deleted role row. Hide the detail
			// from the caller, the integrity fault shows up in server logs.
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issue(user, role)
}

// RegisterInput carries the fields for a new registration.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates an account on the default CLIENT tier and issues a
// token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	email := shared.NormalizeEmail(in.Email)
	name := shared.SanitizeName(in.Name)

	role, err := s.roles.FindByTier(ctx, rbac.TierClient)
	if err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: default CLIENT role missing", shared.ErrRoleIntegrity)
		}
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		RoleID:       role.ID,
		IsPremium:    false,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user, role)
}

// Refresh rotates a still-valid refresh token into a new pair. The account
// and its role are re-checked so a deactivated account or deleted role cuts
// the session short even though the token itself still verifies.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrAccountDeactivated
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}

	return s.issue(user, role)
}

func (s *Service) issue(user *User, role *roles.Role) (*Result, error) {
	pair, err := s.tokens.IssuePair(PairInput{
		SubjectID: user.ID,
		Email:     user.Email,
		RoleID:    user.RoleID,
		RoleTier:  role.Tier,
		IsPremium: user.IsPremium,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: issue token pair: %w", err)
	}
	return &Result{Tokens: pair, User: *user, Role: *role}, nil
}
