package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

const (
	msgAdminsCreate = "only admins can create events"
	msgAdminsUpdate = "only admins can update events"
)

// EventService owns the event lifecycle: creation, owner-only updates and
// soft deletion, and public listing.
type EventService struct {
	events EventStore
	logger *slog.Logger
	now    Clock
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, logger *slog.Logger) *EventService {
	return &EventService{events: events, logger: logger, now: time.Now}
}

// CreateEvent validates the request and persists a new event owned by actor.
func (s *EventService) CreateEvent(ctx context.Context, actor model.Actor, req model.CreateEventRequest) (*model.Event, error) {
	if err := s.CanCreate(actor); err != nil {
		return nil, err
	}

	e := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		LocationID:  req.LocationID,
		Seats:       req.Seats,
		CreatedBy:   actor.UserID,
	}
	if err := s.validate(e); err != nil {
		return nil, err
	}

	created, err := s.events.Create(ctx, e)
	if err != nil {
		return nil, storeError("create event", err, model.MsgEventNotFound)
	}
	s.logger.InfoContext(ctx, "event created",
		"event_id", created.ID, "location_id", created.LocationID,
		"seats", created.Seats, "actor_id", actor.UserID)
	return created, nil
}

// CanCreate reports whether actor may create events.
func (s *EventService) CanCreate(actor model.Actor) error {
	return requireAdmin(actor, msgAdminsCreate)
}

// CanUpdate reports whether actor may update events at all. Ownership is
// checked against the stored event by UpdateEvent.
func (s *EventService) CanUpdate(actor model.Actor) error {
	return requireAdmin(actor, msgAdminsUpdate)
}

// UpdateEvent applies patch to an event created by actor and re-runs every
// creation rule on the merged fields. The patch is merged into the row read
// under the store's lock, so concurrent partial updates do not drop fields.
func (s *EventService) UpdateEvent(ctx context.Context, actor model.Actor, id string, patch model.EventPatch) (*model.Event, error) {
	if err := s.CanUpdate(actor); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, apperr.NotFound(model.MsgEventNotFound)
	}

	updated, err := s.events.Update(ctx, id, func(current *model.Event) error {
		if current.CreatedBy != actor.UserID {
			return apperr.PermissionDenied("you can only update events created by you")
		}
		patch.Apply(current)
		current.StartTime = current.StartTime.UTC()
		current.EndTime = current.EndTime.UTC()
		return s.validate(current)
	})
	if err != nil {
		return nil, storeError("update event", err, model.MsgEventNotFound)
	}
	s.logger.InfoContext(ctx, "event updated", "event_id", updated.ID, "actor_id", actor.UserID)
	return updated, nil
}

// DeleteEvent soft-deletes an event created by actor and removes all of its
// registrations. Deleting an already deleted event reports not found.
func (s *EventService) DeleteEvent(ctx context.Context, actor model.Actor, id string) error {
	if err := requireAdmin(actor, "only admins can delete events"); err != nil {
		return err
	}
	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if current.CreatedBy != actor.UserID {
		return apperr.PermissionDenied("you can only delete events created by you")
	}

	removed, err := s.events.SoftDelete(ctx, id, actor.UserID)
	if err != nil {
		return storeError("delete event", err, model.MsgEventNotFound)
	}
	s.logger.InfoContext(ctx, "event deleted",
		"event_id", id, "actor_id", actor.UserID, "registrations_removed", removed)
	return nil
}

// ListEvents returns live events, newest start time first.
func (s *EventService) ListEvents(ctx context.Context, filter model.EventFilter) ([]model.Event, error) {
	events, err := s.events.List(ctx, filter, s.now())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEvent returns a live event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, apperr.NotFound(model.MsgEventNotFound)
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get event", err, model.MsgEventNotFound)
	}
	return e, nil
}

// Now exposes the service clock so callers derive is_past consistently.
func (s *EventService) Now() time.Time {
	return s.now()
}

func (s *EventService) validate(e *model.Event) error {
	if err := e.Validate(s.now()); err != nil {
		return err
	}
	if !validID(e.LocationID) {
		return apperr.Validation(model.MsgLocationNotFound)
	}
	return nil
}

func requireAdmin(actor model.Actor, denied string) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated("authentication required")
	}
	if !actor.IsAdmin() {
		return apperr.PermissionDenied(denied)
	}
	return nil
}
