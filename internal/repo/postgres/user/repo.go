package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

const (
	queryCreate = `
		INSERT INTO users (id, business_id, username, password_hash, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryUpdate = `
		UPDATE users
		SET username = $2, password_hash = $3, deleted = $4, updated_at = $5
		WHERE id = $1`

	queryFindByID = `
		SELECT id, business_id, username, password_hash, deleted, created_at, updated_at
		FROM users
		WHERE id = $1`

	queryFindByUsername = `
		SELECT id, business_id, username, password_hash, deleted, created_at, updated_at
		FROM users
		WHERE business_id = $1 AND username = $2`

	queryFindByUsernameAnyBusiness = `
		SELECT id, business_id, username, password_hash, deleted, created_at, updated_at
		FROM users
		WHERE username = $1
		LIMIT 1`
)

func New(pool *pgxpool.Pool) port.UserRepository {
	return &Repository{pool: pool}
}

type Repository struct {
	pool *pgxpool.Pool
}

func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, queryCreate, u.ID, u.BusinessID, u.Username, u.PasswordHash, u.Deleted, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user: creating: %w", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, queryUpdate, u.ID, u.Username, u.PasswordHash, u.Deleted, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user: updating %s: %w", u.ID, err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByID, id))
}

func (r *Repository) FindByUsername(ctx context.Context, businessID uuid.UUID, username string) (*entity.User, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByUsername, businessID, username))
}

func (r *Repository) FindByUsernameAnyBusiness(ctx context.Context, username string) (*entity.User, error) {
	return scanOne(r.pool.QueryRow(ctx, queryFindByUsernameAnyBusiness, username))
}

func scanOne(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.BusinessID, &u.Username, &u.PasswordHash, &u.Deleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %w", entity.ErrUserNotFound, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("user: scanning: %w", err)
	}
	return u, nil
}
