package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// SpaceRepository implements domain.SpaceRepository using PostgreSQL
type SpaceRepository struct {
	pool *pgxpool.Pool
}

// NewSpaceRepository creates a new SpaceRepository
func NewSpaceRepository(pool *pgxpool.Pool) *SpaceRepository {
	return &SpaceRepository{pool: pool}
}

const spaceColumns = `id, name, kind, icon, created_by, created_at, updated_at`

func scanSpace(row pgx.Row) (*domain.Space, error) {
	var s domain.Space
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Kind,
		&s.Icon,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a space by its UUID
func (r *SpaceRepository) GetByID(id uuid.UUID) (*domain.Space, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+spaceColumns+` FROM spaces WHERE id = $1`, id)
	s, err := scanSpace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return s, nil
}

// Create creates a new space. The caller supplies the ID so personal spaces
// keep their deterministic identifier.
func (r *SpaceRepository) Create(space *domain.Space) (*domain.Space, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO spaces (id, name, kind, icon, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+spaceColumns,
		space.ID, space.Name, space.Kind, space.Icon, space.CreatedBy)
	created, err := scanSpace(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// ProvisionShared inserts the space, owner membership, initial invite,
// owner notification preference and join activity in one transaction. A
// failure anywhere rolls the whole provision back, so a shared space row
// never exists without its active owner membership.
func (r *SpaceRepository) ProvisionShared(p *domain.SharedSpaceProvision) (*domain.Space, error) {
	payloadRaw, err := json.Marshal(p.Activity.Payload)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`INSERT INTO spaces (id, name, kind, icon, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+spaceColumns,
		p.Space.ID, p.Space.Name, p.Space.Kind, p.Space.Icon, p.Space.CreatedBy)
	created, err := scanSpace(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO memberships (user_id, space_id, role, status)
		 VALUES ($1, $2, $3, $4)`,
		p.Owner.UserID, created.ID, p.Owner.Role, p.Owner.Status)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO invites (space_id, code, created_by, expires_at, max_uses, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		created.ID, p.Invite.Code, p.Invite.CreatedBy, p.Invite.ExpiresAt, p.Invite.MaxUses, p.Invite.Status)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO notification_preferences (user_id, space_id, enabled)
		 VALUES ($1, $2, $3)`,
		p.Preference.UserID, created.ID, p.Preference.Enabled)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO activities (space_id, actor_user_id, actor_name, type, payload)
		 VALUES ($1, $2, $3, $4, $5)`,
		created.ID, p.Activity.ActorUserID, p.Activity.ActorName, p.Activity.Type, payloadRaw)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// Rename updates the space name
func (r *SpaceRepository) Rename(id uuid.UUID, name string) (*domain.Space, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE spaces SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+spaceColumns,
		id, name)
	s, err := scanSpace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return s, nil
}

// UpdateIcon updates the space icon reference
func (r *SpaceRepository) UpdateIcon(id uuid.UUID, icon string) (*domain.Space, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE spaces SET icon = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+spaceColumns,
		id, icon)
	s, err := scanSpace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSpaceNotFound
		}
		return nil, err
	}
	return s, nil
}

// Delete removes the space row. Memberships, invites, activity and
// notification preferences go with it through the ON DELETE CASCADE
// foreign keys, all within the single DELETE statement.
func (r *SpaceRepository) Delete(id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		`DELETE FROM spaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSpaceNotFound
	}
	return nil
}
