package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// InviteRepository implements domain.InviteRepository using PostgreSQL
type InviteRepository struct {
	pool *pgxpool.Pool
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(pool *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{pool: pool}
}

const inviteColumns = `id, space_id, code, created_by, expires_at, max_uses, used_count, status, created_at, updated_at`

func scanInvite(row pgx.Row) (*domain.Invite, error) {
	var inv domain.Invite
	err := row.Scan(
		&inv.ID,
		&inv.SpaceID,
		&inv.Code,
		&inv.CreatedBy,
		&inv.ExpiresAt,
		&inv.MaxUses,
		&inv.UsedCount,
		&inv.Status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByCode looks an invite up case-insensitively. Codes are stored
// upper-cased; active invites win over historical ones sharing a code.
func (r *InviteRepository) GetByCode(code string) (*domain.Invite, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+inviteColumns+` FROM invites
		 WHERE code = upper($1)
		 ORDER BY (status = 'active') DESC, created_at DESC
		 LIMIT 1`,
		code)
	inv, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return inv, nil
}

// GetActiveBySpace retrieves the space's current active invite
func (r *InviteRepository) GetActiveBySpace(spaceID uuid.UUID) (*domain.Invite, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+inviteColumns+` FROM invites
		 WHERE space_id = $1 AND status = 'active'
		 ORDER BY created_at DESC
		 LIMIT 1`,
		spaceID)
	inv, err := scanInvite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return inv, nil
}

// CodeInUse reports whether an active invite already uses the code
func (r *InviteRepository) CodeInUse(code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (
		   SELECT 1 FROM invites WHERE code = upper($1) AND status = 'active'
		 )`,
		code).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a new invite
func (r *InviteRepository) Create(invite *domain.Invite) (*domain.Invite, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO invites (space_id, code, created_by, expires_at, max_uses)
		 VALUES ($1, upper($2), $3, $4, $5)
		 RETURNING `+inviteColumns,
		invite.SpaceID, invite.Code, invite.CreatedBy, invite.ExpiresAt, invite.MaxUses)
	created, err := scanInvite(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// MarkExpired flips an invite to expired. Expiry is evaluated lazily on read
// and redeem paths, so this persists what the clock already decided.
func (r *InviteRepository) MarkExpired(id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE invites SET status = 'expired', updated_at = now()
		 WHERE id = $1 AND status = 'active'`,
		id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInviteNotFound
	}
	return nil
}

// RevokeActiveBySpace revokes all active invites for a space
func (r *InviteRepository) RevokeActiveBySpace(spaceID uuid.UUID) error {
	_, err := r.pool.Exec(context.Background(),
		`UPDATE invites SET status = 'revoked', updated_at = now()
		 WHERE space_id = $1 AND status = 'active'`,
		spaceID)
	return err
}

// Redeem consumes one use of the invite and creates the membership in a
// single transaction. The conditional UPDATE is the concurrency gate: two
// racing redeemers of a one-use invite serialize on the row lock and the
// loser sees zero rows affected.
func (r *InviteRepository) Redeem(inviteID uuid.UUID, m *domain.Membership) (*domain.Membership, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE invites SET used_count = used_count + 1, updated_at = now()
		 WHERE id = $1 AND status = 'active' AND used_count < max_uses`,
		inviteID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrInviteExhausted
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO memberships (user_id, space_id, role, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+membershipColumns,
		m.UserID, m.SpaceID, m.Role, m.Status)
	created, err := scanMembership(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}
