// Package postgres provides pgx-backed persistence for users, activities,
// and the event outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/domain"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/events"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/observability"
)

const activityColumns = `activity_id, user_id, category, activity_type, value, unit, emission_kg, activity_date, notes, created_at`

// Repository stores users and activities. Every activity query is scoped by
// user_id, which is what enforces per-user isolation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists the activity and records an activity.logged outbox event
// inside a single transaction.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	err := r.writeActivity(ctx, activity, "activity.logged", `INSERT INTO activities (`+activityColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`)
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(string(activity.Category), activity.Emission, activity.CreatedAt)
	return nil
}

// Update rewrites the raw fields and the recomputed emission, recording an
// activity.updated outbox event in the same transaction.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) error {
	return r.writeActivity(ctx, activity, "activity.updated", `INSERT INTO activities (`+activityColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (activity_id) DO UPDATE SET
            category = EXCLUDED.category,
            activity_type = EXCLUDED.activity_type,
            value = EXCLUDED.value,
            unit = EXCLUDED.unit,
            emission_kg = EXCLUDED.emission_kg,
            activity_date = EXCLUDED.activity_date,
            notes = EXCLUDED.notes`)
}

func (r *Repository) writeActivity(ctx context.Context, activity domain.Activity, eventType, stmt string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, stmt,
		activity.ID,
		activity.UserID,
		string(activity.Category),
		activity.Type,
		activity.Value,
		activity.Unit,
		activity.Emission,
		activity.Date,
		activity.Notes,
		activity.CreatedAt,
	)
	if err != nil {
		return err
	}

	payload := events.ActivityChange{
		ActivityID: activity.ID,
		UserID:     activity.UserID,
		Category:   string(activity.Category),
		Type:       activity.Type,
		Value:      activity.Value,
		Unit:       activity.Unit,
		EmissionKg: activity.Emission,
		Date:       activity.Date.Format(time.DateOnly),
		OccurredAt: time.Now().UTC(),
	}
	if err = insertOutbox(ctx, tx, activity.UserID, activity.ID, eventType, payload); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// Get retrieves an activity owned by the user. A missing or foreign row
// yields (nil, nil).
func (r *Repository) Get(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1 AND activity_id=$2`

	row := r.pool.QueryRow(ctx, query, userID, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// Delete removes an owned activity and records an activity.deleted outbox
// event. It reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, userID, activityID string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE user_id=$1 AND activity_id=$2`, userID, activityID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		err = tx.Commit(ctx)
		return false, err
	}

	payload := events.ActivityDeleted{
		ActivityID: activityID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
	if err = insertOutbox(ctx, tx, userID, activityID, "activity.deleted", payload); err != nil {
		return false, err
	}

	err = tx.Commit(ctx)
	return err == nil, err
}

// ListByUser returns a page of the user's activities, newest date first.
// A non-positive limit returns the full set, which is what the aggregation
// endpoints rely on.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{userID}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (activity_date, activity_id) < ($2, $3)`
		args = append(args, cursor.Date, cursor.ID)
	}
	query += ` ORDER BY activity_date DESC, activity_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var results []domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{Date: last.Date, ID: last.ID}
	}
	return results, next, nil
}

// ListAllByUser fetches the user's full activity set for aggregation.
func (r *Repository) ListAllByUser(ctx context.Context, userID string) ([]domain.Activity, error) {
	all, _, err := r.ListByUser(ctx, userID, nil, 0)
	return all, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var activity domain.Activity
	var category string
	if err := row.Scan(
		&activity.ID,
		&activity.UserID,
		&category,
		&activity.Type,
		&activity.Value,
		&activity.Unit,
		&activity.Emission,
		&activity.Date,
		&activity.Notes,
		&activity.CreatedAt,
	); err != nil {
		return nil, err
	}
	activity.Category = domain.Category(category)
	return &activity, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, userID, aggregateID, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, stmt, userID, aggregateID, eventType, "activity_events", userID, body)
	return err
}

