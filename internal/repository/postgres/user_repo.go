package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, auth0_id, email, name, picture_url, active_space_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Auth0ID,
		&u.Email,
		&u.Name,
		&u.PictureURL,
		&u.ActiveSpaceID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Create creates a new user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		user.Auth0ID, user.Email, user.Name, user.PictureURL)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// UpdateName updates the user's display name
func (r *UserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE users SET name = $2, updated_at = now()
		 WHERE auth0_id = $1
		 RETURNING `+userColumns,
		auth0ID, name)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// CreateOrGetByAuth0ID creates the user on first login and returns the
// existing row on subsequent logins. Profile fields are refreshed from the
// identity provider on every call.
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO users (auth0_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (auth0_id) DO UPDATE
		 SET email = EXCLUDED.email,
		     name = COALESCE(EXCLUDED.name, users.name),
		     picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		     updated_at = now()
		 RETURNING `+userColumns,
		auth0ID, email, name, pictureURL)
	return scanUser(row)
}

// SetActiveSpace stores the user's active space pointer. A nil spaceID
// clears the pointer back to the personal-space default.
func (r *UserRepository) SetActiveSpace(id uuid.UUID, spaceID *uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE users SET active_space_id = $2, updated_at = now() WHERE id = $1`,
		id, spaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
