package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// eventSelect loads an event with its location name, creator name and the
// live registered count. The count is part of the same statement so
// available seats always reflect the latest committed registrations.
const eventSelect = `
SELECT e.id, e.title, e.description, e.start_time, e.end_time,
       e.location_id, l.name, e.seats, e.created_by, u.username,
       e.deleted_at, e.deleted_by, e.created_at, e.updated_at,
       (SELECT COUNT(*) FROM registrations r
         WHERE r.event_id = e.id AND r.status = 'registered')
FROM events e
JOIN locations l ON l.id = e.location_id
JOIN users u ON u.id = e.created_by`

func eventDest(e *model.Event) []any {
	return []any{
		&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&e.LocationID, &e.LocationName, &e.Seats, &e.CreatedBy, &e.CreatedByName,
		&e.DeletedAt, &e.DeletedBy, &e.CreatedAt, &e.UpdatedAt,
		&e.RegisteredCount,
	}
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event after checking capacity and overlap.
//
// The location row is locked with SELECT … FOR UPDATE for the duration of
// the transaction, so two admins booking the same venue are serialised and
// the second one sees the first one's event in its overlap query. The
// events_no_overlap exclusion constraint backs this up at the storage layer.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkSchedule(ctx, tx, e); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO events (id, title, description, start_time, end_time,
		                     location_id, seats, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		e.ID, e.Title, e.Description, e.StartTime, e.EndTime,
		e.LocationID, e.Seats, e.CreatedBy, now,
	)
	if err != nil {
		if isViolation(err, codeExclusionViolation, constraintEventsNoOverlap) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, e.ID)
}

// Update locks a live event, hands the current row to mutate and writes the
// result back. The event row is locked first, then its (possibly new)
// location, matching the lock order used by registration and creation.
// Errors returned by mutate abort the update unchanged.
func (r *EventRepository) Update(ctx context.Context, id string, mutate func(*model.Event) error) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Step 1: lock the event row, then re-read it so mutate sees every
	// change committed before the lock was granted.
	var locked string
	err = tx.QueryRow(ctx,
		`SELECT id FROM events WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		id,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	e, err := getEvent(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// Step 2: apply the caller's changes.
	if err := mutate(e); err != nil {
		return nil, err
	}
	e.ID = id

	// Step 3: re-check the schedule and write.
	if err := checkSchedule(ctx, tx, e); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE events
		    SET title = $2, description = $3, start_time = $4, end_time = $5,
		        location_id = $6, seats = $7, updated_at = $8
		  WHERE id = $1`,
		e.ID, e.Title, e.Description, e.StartTime, e.EndTime,
		e.LocationID, e.Seats, time.Now().UTC(),
	)
	if err != nil {
		if isViolation(err, codeExclusionViolation, constraintEventsNoOverlap) {
			return nil, ErrOverlap
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, e.ID)
}

// checkSchedule locks the event's location and enforces capacity and the
// no-overlap rule against other live events at that location.
func checkSchedule(ctx context.Context, tx pgx.Tx, e *model.Event) error {
	var capacity int
	err := tx.QueryRow(ctx,
		`SELECT capacity FROM locations WHERE id = $1 FOR UPDATE`,
		e.LocationID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLocationNotFound
		}
		return fmt.Errorf("lock location row: %w", err)
	}
	if e.Seats > capacity {
		return ErrSeatsExceedCapacity
	}

	// Half-open intervals: [s1,e1) and [s2,e2) overlap iff s1 < e2 and s2 < e1.
	var overlaps bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM events
		      WHERE location_id = $1
		        AND deleted_at IS NULL
		        AND id <> $2
		        AND start_time < $4
		        AND end_time > $3)`,
		e.LocationID, e.ID, e.StartTime, e.EndTime,
	).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if overlaps {
		return ErrOverlap
	}
	return nil
}

// SoftDelete retires a live event and removes all of its registrations in
// one transaction. It returns the number of registrations removed, or
// ErrNotFound when the event is missing or already retired.
func (r *EventRepository) SoftDelete(ctx context.Context, id, actorID string) (int64, error) {
	now := time.Now().UTC()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE events
		    SET deleted_at = $2, deleted_by = $3, updated_at = $2
		  WHERE id = $1 AND deleted_at IS NULL`,
		id, now, actorID,
	)
	if err != nil {
		return 0, fmt.Errorf("retire event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	tag, err = tx.Exec(ctx, `DELETE FROM registrations WHERE event_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("purge registrations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetByID returns a live event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return getEvent(ctx, r.db, id)
}

func getEvent(ctx context.Context, q querier, id string) (*model.Event, error) {
	var e model.Event
	err := q.QueryRow(ctx, eventSelect+`
		WHERE e.id = $1 AND e.deleted_at IS NULL`,
		id,
	).Scan(eventDest(&e)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// List returns live events ordered by start time descending.
func (r *EventRepository) List(ctx context.Context, filter model.EventFilter, now time.Time) ([]model.Event, error) {
	query := eventSelect + ` WHERE e.deleted_at IS NULL`
	var args []any
	switch filter {
	case model.FilterUpcoming:
		query += ` AND e.start_time >= $1`
		args = append(args, now)
	case model.FilterPast:
		query += ` AND e.start_time < $1`
		args = append(args, now)
	}
	query += ` ORDER BY e.start_time DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(eventDest(&e)...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
