package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Resolver maps role ids to their fixed tier. Callers interpret a
// shared.ErrRoleNotFound by flow: token verification treats it as
// unauthorized, registration treats it as an integrity fault.
type Resolver struct {
	repo Repository
}

// NewResolver constructs a Resolver over the repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the tier for a role id.
func (r *Resolver) Resolve(ctx context.Context, roleID string) (rbac.RoleTier, error) {
	role, err := r.repo.FindByID(ctx, roleID)
	if err != nil {
		return "", err
	}
	return role.Tier, nil
}

// DefaultRole returns the row backing the CLIENT tier assigned to new
// registrations. Its absence is data corruption, not a per-request
// condition.
func (r *Resolver) DefaultRole(ctx context.Context) (*Role, error) {
	role, err := r.repo.FindByTier(ctx, rbac.TierClient)
	if err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: CLIENT role missing", shared.ErrRoleIntegrity)
		}
		return nil, err
	}
	return role, nil
}

// Service exposes read-only role metadata for the management API.
type Service struct {
	repo Repository
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{repo: NewRepository(pool)}
}

// NewServiceWithRepository constructs a Service over an explicit repository.
func NewServiceWithRepository(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all roles.
func (s *Service) List(ctx context.Context) ([]Role, error) {
	return s.repo.List(ctx)
}

// Get fetches one role by id.
func (s *Service) Get(ctx context.Context, id string) (*Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrRoleNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}
