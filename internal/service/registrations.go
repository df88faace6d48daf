package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// RegistrationService owns admission control and the registration lifecycle.
type RegistrationService struct {
	registrations RegistrationStore
	events        EventStore
	logger        *slog.Logger
	now           Clock
}

// NewRegistrationService constructs a RegistrationService with its dependencies.
func NewRegistrationService(registrations RegistrationStore, events EventStore, logger *slog.Logger) *RegistrationService {
	return &RegistrationService{
		registrations: registrations,
		events:        events,
		logger:        logger,
		now:           time.Now,
	}
}

// Register admits actor to an event. The checks run in a fixed order: role,
// existence, timing, uniqueness, seats. The last four happen inside one
// store transaction that holds a lock on the event.
func (s *RegistrationService) Register(ctx context.Context, actor model.Actor, eventID string) (*model.Registration, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if actor.IsAdmin() {
		return nil, apperr.PermissionDenied(model.MsgAdminsCannotRegister)
	}
	if !validID(eventID) {
		return nil, apperr.NotFound(model.MsgEventNotFound)
	}

	reg, err := s.registrations.Book(ctx, eventID, actor.UserID, s.now())
	if err != nil {
		return nil, storeError("register for event", err, model.MsgEventNotFound)
	}
	reg.StudentName = actor.Username

	s.logger.InfoContext(ctx, "registration accepted",
		"registration_id", reg.ID, "event_id", eventID, "student_id", actor.UserID)
	return reg, nil
}

// Unregister removes one of actor's own registrations, freeing the seat.
// Registrations owned by other users are reported as not found.
func (s *RegistrationService) Unregister(ctx context.Context, actor model.Actor, registrationID string) error {
	if !actor.Authenticated() {
		return apperr.Unauthenticated("authentication required")
	}
	if !validID(registrationID) {
		return apperr.NotFound(model.MsgRegistrationNotFound)
	}
	if err := s.registrations.DeleteOwned(ctx, registrationID, actor.UserID); err != nil {
		return storeError("unregister", err, model.MsgRegistrationNotFound)
	}
	s.logger.InfoContext(ctx, "registration removed",
		"registration_id", registrationID, "student_id", actor.UserID)
	return nil
}

// GetRegistration returns a registration visible to actor: admins see any,
// everyone else only their own.
func (s *RegistrationService) GetRegistration(ctx context.Context, actor model.Actor, registrationID string) (*model.Registration, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	if !validID(registrationID) {
		return nil, apperr.NotFound(model.MsgRegistrationNotFound)
	}
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, storeError("get registration", err, model.MsgRegistrationNotFound)
	}
	if !actor.IsAdmin() && reg.StudentID != actor.UserID {
		return nil, apperr.NotFound(model.MsgRegistrationNotFound)
	}
	return reg, nil
}

// ListMine returns actor's active registrations with event details.
func (s *RegistrationService) ListMine(ctx context.Context, actor model.Actor) ([]model.RegistrationDetail, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	details, err := s.registrations.ListDetailsByStudent(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list my registrations: %w", err)
	}
	return details, nil
}

// ListAll returns every registration to admins and only their own to
// everyone else. It never denies a student.
func (s *RegistrationService) ListAll(ctx context.Context, actor model.Actor) ([]model.Registration, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthenticated("authentication required")
	}
	var (
		regs []model.Registration
		err  error
	)
	if actor.IsAdmin() {
		regs, err = s.registrations.ListAll(ctx)
	} else {
		regs, err = s.registrations.ListByStudent(ctx, actor.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// ListForEvent returns the registered students of an event. Admins only.
func (s *RegistrationService) ListForEvent(ctx context.Context, actor model.Actor, eventID string) ([]model.Registration, error) {
	if err := requireAdmin(actor, "only admins can view registrations"); err != nil {
		return nil, err
	}
	if !validID(eventID) {
		return nil, apperr.NotFound(model.MsgEventNotFound)
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, storeError("get event", err, model.MsgEventNotFound)
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	return regs, nil
}
