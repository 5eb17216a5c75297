package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// NotificationPreferenceRepository implements
// domain.NotificationPreferenceRepository using PostgreSQL
type NotificationPreferenceRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationPreferenceRepository creates a new NotificationPreferenceRepository
func NewNotificationPreferenceRepository(pool *pgxpool.Pool) *NotificationPreferenceRepository {
	return &NotificationPreferenceRepository{pool: pool}
}

const prefColumns = `user_id, space_id, enabled, updated_at`

func scanPreference(row pgx.Row) (*domain.NotificationPreference, error) {
	var p domain.NotificationPreference
	err := row.Scan(
		&p.UserID,
		&p.SpaceID,
		&p.Enabled,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns ErrNotFound when no explicit preference has been stored
func (r *NotificationPreferenceRepository) Get(userID, spaceID uuid.UUID) (*domain.NotificationPreference, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+prefColumns+` FROM notification_preferences
		 WHERE user_id = $1 AND space_id = $2`,
		userID, spaceID)
	p, err := scanPreference(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Set stores the preference, inserting or updating as needed
func (r *NotificationPreferenceRepository) Set(userID, spaceID uuid.UUID, enabled bool) (*domain.NotificationPreference, error) {
	row := r.pool.QueryRow(context.Background(),
		`INSERT INTO notification_preferences (user_id, space_id, enabled)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, space_id) DO UPDATE
		 SET enabled = EXCLUDED.enabled, updated_at = now()
		 RETURNING `+prefColumns,
		userID, spaceID, enabled)
	return scanPreference(row)
}
