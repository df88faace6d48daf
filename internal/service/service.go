// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// EventStore persists events. Create and Update enforce capacity and
// overlap atomically; SoftDelete retires an event and purges its
// registrations atomically. Update passes the locked current row to mutate
// and writes it back unless mutate fails.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	Update(ctx context.Context, id string, mutate func(*model.Event) error) (*model.Event, error)
	SoftDelete(ctx context.Context, id, actorID string) (int64, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter model.EventFilter, now time.Time) ([]model.Event, error)
}

// RegistrationStore persists registrations. Book performs the whole
// admission check and insert under a lock on the event.
type RegistrationStore interface {
	Book(ctx context.Context, eventID, studentID string, now time.Time) (*model.Registration, error)
	DeleteOwned(ctx context.Context, id, studentID string) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	ListAll(ctx context.Context) ([]model.Registration, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListDetailsByStudent(ctx context.Context, studentID string) ([]model.RegistrationDetail, error)
}

// LocationStore reads the venue catalog.
type LocationStore interface {
	List(ctx context.Context) ([]model.Location, error)
	GetByID(ctx context.Context, id string) (*model.Location, error)
}

// Cache is a best-effort key/value cache for immutable data.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// storeError translates repository sentinels into caller-facing errors.
// Anything unrecognised is wrapped with op and surfaces as internal.
func storeError(op string, err error, notFound string) error {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrPermissionDenied):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, notFound, err)
	case errors.Is(err, repository.ErrEventFull):
		return apperr.Wrap(apperr.KindValidation, model.MsgNoSeatsAvailable, err)
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return apperr.Wrap(apperr.KindValidation, model.MsgAlreadyRegistered, err)
	case errors.Is(err, repository.ErrEventPast):
		return apperr.Wrap(apperr.KindValidation, model.MsgPastEvent, err)
	case errors.Is(err, repository.ErrOverlap):
		return apperr.Wrap(apperr.KindValidation, model.MsgLocationOverlap, err)
	case errors.Is(err, repository.ErrSeatsExceedCapacity):
		return apperr.Wrap(apperr.KindValidation, model.MsgSeatsExceedCapacity, err)
	case errors.Is(err, repository.ErrLocationNotFound):
		return apperr.Wrap(apperr.KindValidation, model.MsgLocationNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
