package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veland/larder/larder-backend/internal/domain"
)

// ActivityRepository implements domain.ActivityRepository using PostgreSQL.
// Payloads are stored as jsonb.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

const activityColumns = `id, space_id, actor_user_id, actor_name, type, payload, created_at`

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		a          domain.Activity
		payloadRaw []byte
	)
	err := row.Scan(
		&a.ID,
		&a.SpaceID,
		&a.ActorUserID,
		&a.ActorName,
		&a.Type,
		&payloadRaw,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Payload = make(map[string]string)
	if len(payloadRaw) > 0 {
		if err := json.Unmarshal(payloadRaw, &a.Payload); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// Create appends one entry and evicts entries beyond MaxActivitiesPerSpace
// for that space in the same transaction, oldest first.
func (r *ActivityRepository) Create(activity *domain.Activity) (*domain.Activity, error) {
	payloadRaw, err := json.Marshal(activity.Payload)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Writers to the same space serialize on the space row. Without this,
	// two concurrent inserts each compute the keep-set against a snapshot
	// missing the other's row and the log can overshoot the cap.
	if _, err := tx.Exec(ctx,
		`SELECT 1 FROM spaces WHERE id = $1 FOR UPDATE`, activity.SpaceID); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO activities (space_id, actor_user_id, actor_name, type, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+activityColumns,
		activity.SpaceID, activity.ActorUserID, activity.ActorName, activity.Type, payloadRaw)
	created, err := scanActivity(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM activities
		 WHERE space_id = $1
		   AND id NOT IN (
		     SELECT id FROM activities
		     WHERE space_id = $1
		     ORDER BY created_at DESC, id DESC
		     LIMIT $2
		   )`,
		activity.SpaceID, domain.MaxActivitiesPerSpace)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ListBySpace returns entries newest-first; limit <= 0 means no limit
func (r *ActivityRepository) ListBySpace(spaceID uuid.UUID, limit int) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
	          WHERE space_id = $1
	          ORDER BY created_at DESC, id DESC`
	args := []interface{}{spaceID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}
