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

const registrationSelect = `
SELECT r.id, r.event_id, e.title, r.student_id, s.username,
       r.status, r.created_at, r.updated_at
FROM registrations r
JOIN events e ON e.id = r.event_id
JOIN users s ON s.id = r.student_id`

func registrationDest(reg *model.Registration) []any {
	return []any{
		&reg.ID, &reg.EventID, &reg.EventTitle, &reg.StudentID, &reg.StudentName,
		&reg.Status, &reg.CreatedAt, &reg.UpdatedAt,
	}
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Book performs a concurrency-safe registration inside a single transaction.
//
// ─────────────────────────────────────────────────────────────────────────────
// RACE CONDITION
// ─────────────────────────────────────────────────────────────────────────────
//
// Counting registered rows and then inserting is a read-then-write:
//
//	tx A: SELECT COUNT(*) … → 0 of 1 seats taken
//	tx B: SELECT COUNT(*) … → 0 of 1 seats taken
//	tx A: INSERT registration
//	tx B: INSERT registration
//	Result: two registrations for a one-seat event.
//
// SELECT … FOR UPDATE on the event row makes every booking for the same event
// queue behind the first one until it commits or rolls back, so the count
// each transaction reads already includes every seat granted before it.
// Bookings for different events do not contend.
//
// The same lock serialises a student's duplicate attempts; the
// unique_event_student constraint still guards the insert and a violation
// is reported as ErrAlreadyRegistered.
//
// ─────────────────────────────────────────────────────────────────────────────
func (r *RegistrationRepository) Book(ctx context.Context, eventID, studentID string, now time.Time) (*model.Registration, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	// ── Step 1: lock the live event row. ──────────────────────────────────
	var (
		title     string
		startTime time.Time
		seats     int
	)
	err = tx.QueryRow(ctx,
		`SELECT title, start_time, seats
		   FROM events
		  WHERE id = $1 AND deleted_at IS NULL
		    FOR UPDATE`,
		eventID,
	).Scan(&title, &startTime, &seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	// ── Step 2: registration closes when the event starts. ───────────────
	if startTime.Before(now) {
		return nil, ErrEventPast
	}

	// ── Step 3: one registration per student per event. ──────────────────
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND student_id = $2)`,
		eventID, studentID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRegistered
	}

	// ── Step 4: seats, counted under the lock. ────────────────────────────
	var registered int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'registered'`,
		eventID,
	).Scan(&registered)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	if registered >= seats {
		return nil, ErrEventFull
	}

	// ── Step 5: insert. ───────────────────────────────────────────────────
	reg := &model.Registration{
		ID:         uuid.New().String(),
		EventID:    eventID,
		EventTitle: title,
		StudentID:  studentID,
		Status:     model.StatusRegistered,
		CreatedAt:  time.Now().UTC(),
	}
	reg.UpdatedAt = reg.CreatedAt
	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, event_id, student_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		reg.ID, reg.EventID, reg.StudentID, reg.Status, reg.CreatedAt,
	)
	if err != nil {
		if isViolation(err, codeUniqueViolation, constraintUniqueEventStudent) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return reg, nil
}

// DeleteOwned hard-deletes a registration belonging to studentID. A row owned
// by someone else is indistinguishable from a missing one.
func (r *RegistrationRepository) DeleteOwned(ctx context.Context, id, studentID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM registrations WHERE id = $1 AND student_id = $2`,
		id, studentID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.QueryRow(ctx, registrationSelect+` WHERE r.id = $1`, id).Scan(registrationDest(&reg)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

// ListAll returns every registration, oldest first.
func (r *RegistrationRepository) ListAll(ctx context.Context) ([]model.Registration, error) {
	return r.list(ctx, registrationSelect+` ORDER BY r.created_at ASC`)
}

// ListByStudent returns a student's registrations of any status, oldest first.
func (r *RegistrationRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Registration, error) {
	return r.list(ctx, registrationSelect+`
		WHERE r.student_id = $1
		ORDER BY r.created_at ASC`, studentID)
}

// ListByEvent returns the registered-status registrations for an event.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return r.list(ctx, registrationSelect+`
		WHERE r.event_id = $1 AND r.status = 'registered'
		ORDER BY r.created_at ASC`, eventID)
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...any) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(registrationDest(&reg)...); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// ListDetailsByStudent returns a student's registered-status registrations,
// each with the full event it belongs to, most recent first.
func (r *RegistrationRepository) ListDetailsByStudent(ctx context.Context, studentID string) ([]model.RegistrationDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.id, r.event_id, e.title, r.student_id, s.username,
		       r.status, r.created_at, r.updated_at,
		       e.id, e.title, e.description, e.start_time, e.end_time,
		       e.location_id, l.name, e.seats, e.created_by, u.username,
		       e.deleted_at, e.deleted_by, e.created_at, e.updated_at,
		       (SELECT COUNT(*) FROM registrations c
		         WHERE c.event_id = e.id AND c.status = 'registered')
		FROM registrations r
		JOIN users s ON s.id = r.student_id
		JOIN events e ON e.id = r.event_id
		JOIN locations l ON l.id = e.location_id
		JOIN users u ON u.id = e.created_by
		WHERE r.student_id = $1
		  AND r.status = 'registered'
		  AND e.deleted_at IS NULL
		ORDER BY r.created_at DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registration details: %w", err)
	}
	defer rows.Close()

	var details []model.RegistrationDetail
	for rows.Next() {
		var d model.RegistrationDetail
		dest := append(registrationDest(&d.Registration), eventDest(&d.Event)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan registration detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
