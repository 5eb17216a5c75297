package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// MembershipRepository implements domain.MembershipRepository using PostgreSQL.
// A partial unique index on (user_id, space_id) WHERE status = 'active'
// enforces at most one active membership per user per space.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

const membershipColumns = `id, user_id, space_id, role, status, joined_at`

func scanMembership(row pgx.Row) (*domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.SpaceID,
		&m.Role,
		&m.Status,
		&m.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetActive retrieves the active membership for a user in a space
func (r *MembershipRepository) GetActive(userID, spaceID uuid.UUID) (*domain.Membership, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 AND space_id = $2 AND status = 'active'`,
		userID, spaceID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListActiveBySpace returns active memberships ordered by join time, earliest
// first. The id tiebreak keeps succession deterministic for equal timestamps.
func (r *MembershipRepository) ListActiveBySpace(spaceID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE space_id = $1 AND status = 'active'
		 ORDER BY joined_at ASC, id ASC`,
		spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

// ListActiveByUser returns all spaces the user is an active member of
func (r *MembershipRepository) ListActiveByUser(userID uuid.UUID) ([]*domain.Membership, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+membershipColumns+` FROM memberships
		 WHERE user_id = $1 AND status = 'active'
		 ORDER BY joined_at ASC, id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMemberships(rows)
}

func collectMemberships(rows pgx.Rows) ([]*domain.Membership, error) {
	memberships := make([]*domain.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return memberships, nil
}

// Create inserts a new membership row
func (r *MembershipRepository) Create(m *domain.Membership) (*domain.Membership, error) {
	row := r.pool.QueryRow(context.Background(),
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
	return created, nil
}

// SetStatus updates the status of a membership row
func (r *MembershipRepository) SetStatus(id uuid.UUID, status domain.MembershipStatus) (*domain.Membership, error) {
	row := r.pool.QueryRow(context.Background(),
		`UPDATE memberships SET status = $2
		 WHERE id = $1
		 RETURNING `+membershipColumns,
		id, status)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return m, nil
}

// TransferOwnership flips the owner's role to member and the target's role to
// owner in a single transaction, so the space never has zero or two owners.
func (r *MembershipRepository) TransferOwnership(spaceID, ownerUserID, targetUserID uuid.UUID) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE memberships SET role = 'member'
		 WHERE space_id = $1 AND user_id = $2 AND role = 'owner' AND status = 'active'`,
		spaceID, ownerUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}

	tag, err = tx.Exec(ctx,
		`UPDATE memberships SET role = 'owner'
		 WHERE space_id = $1 AND user_id = $2 AND status = 'active'`,
		spaceID, targetUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}

	return tx.Commit(ctx)
}

// LeaveWithSuccession marks the owner's membership as left and promotes the
// successor to owner in a single transaction.
func (r *MembershipRepository) LeaveWithSuccession(spaceID, leavingUserID, successorUserID uuid.UUID) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE memberships SET status = 'left'
		 WHERE space_id = $1 AND user_id = $2 AND status = 'active'`,
		spaceID, leavingUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMembershipNotFound
	}

	tag, err = tx.Exec(ctx,
		`UPDATE memberships SET role = 'owner'
		 WHERE space_id = $1 AND user_id = $2 AND status = 'active'`,
		spaceID, successorUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("promote successor %s: %w", successorUserID, domain.ErrMembershipNotFound)
	}

	return tx.Commit(ctx)
}
