package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeup-app/lifeup-api/internal/rbac"
	"github.com/lifeup-app/lifeup-api/internal/shared"
)

// Repository defines persistence operations for roles.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Role, error)
	FindByTier(ctx context.Context, tier rbac.RoleTier) (*Role, error)
	List(ctx context.Context) ([]Role, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const roleColumns = `id, name, type, description, created_at, updated_at`

// FindByID fetches a role by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id string) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// FindByTier fetches the role row backing a fixed tier.
func (r *PGRepository) FindByTier(ctx context.Context, tier rbac.RoleTier) (*Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE type = $1`, string(tier))
	return scanRole(row)
}

// List returns all roles ordered by name.
func (r *PGRepository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *role)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*Role, error) {
	var (
		role        Role
		rawTier     string
		description *string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&role.ID, &role.Name, &rawTier, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrRoleNotFound
		}
		return nil, fmt.Errorf("roles: scan: %w", err)
	}
	tier, ok := rbac.ParseTier(rawTier)
	if !ok {
		return nil, fmt.Errorf("%w: role %s has unknown type %q", shared.ErrRoleIntegrity, role.ID, rawTier)
	}
	role.Tier = tier
	if description != nil {
		role.Description = *description
	}
	role.CreatedAt = createdAt
	role.UpdatedAt = updatedAt
	return &role, nil
}

var _ Repository = (*PGRepository)(nil)
