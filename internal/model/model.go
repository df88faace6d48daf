// Package model defines the core domain types for the campus event service.
package model

import (
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
)

// Caller-visible rule violations. Clients match on these strings.
const (
	MsgTitleRequired        = "title is required"
	MsgStartTimeRequired    = "start time is required"
	MsgEndTimeRequired      = "end time is required"
	MsgStartNotInFuture     = "start time must be in the future"
	MsgEndBeforeStart       = "end time must be after start time"
	MsgSeatsNotPositive     = "seats must be a positive integer"
	MsgSeatsExceedCapacity  = "seats cannot exceed location capacity"
	MsgLocationOverlap      = "another event already exists at this location during the specified time"
	MsgLocationNotFound     = "location does not exist"
	MsgAdminsCannotRegister = "admins cannot register"
	MsgPastEvent            = "cannot register for past events"
	MsgAlreadyRegistered    = "already registered for this event"
	MsgNoSeatsAvailable     = "no seats available"
	MsgEventNotFound        = "event not found"
	MsgRegistrationNotFound = "registration not found"
	MsgLocationNotFoundByID = "location not found"
)

// Event is a scheduled occurrence at a location with a seat limit.
//
// RegisteredCount is loaded together with the event row and is never cached
// between reads; AvailableSeats is derived from it.
type Event struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         time.Time    `json:"end_time"`
	LocationID      string       `json:"location"`
	LocationName    LocationName `json:"-"`
	Seats           int          `json:"seats"`
	CreatedBy       string       `json:"created_by"`
	CreatedByName   string       `json:"created_by_name"`
	DeletedAt       *time.Time   `json:"-"`
	DeletedBy       *string      `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	RegisteredCount int          `json:"registered_count"`
}

// AvailableSeats returns max(0, seats - registered).
func (e *Event) AvailableSeats() int {
	if n := e.Seats - e.RegisteredCount; n > 0 {
		return n
	}
	return 0
}

// IsPast reports whether the event has already started.
func (e *Event) IsPast(now time.Time) bool {
	return e.StartTime.Before(now)
}

// IsDeleted reports whether the event has been retired.
func (e *Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// Overlaps reports whether [start, end) intersects the event's interval.
// Back-to-back intervals do not overlap.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartTime.Before(end) && start.Before(e.EndTime)
}

// Validate checks the rules that do not depend on stored state.
// Capacity and overlap are checked by the repository under lock.
func (e *Event) Validate(now time.Time) error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return apperr.Validation(MsgTitleRequired)
	case e.StartTime.IsZero():
		return apperr.Validation(MsgStartTimeRequired)
	case e.EndTime.IsZero():
		return apperr.Validation(MsgEndTimeRequired)
	case !e.StartTime.After(now):
		return apperr.Validation(MsgStartNotInFuture)
	case !e.EndTime.After(e.StartTime):
		return apperr.Validation(MsgEndBeforeStart)
	case e.Seats <= 0:
		return apperr.Validation(MsgSeatsNotPositive)
	}
	return nil
}

// EventPatch carries the fields of a partial event update. Nil fields are
// left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	LocationID  *string
	Seats       *int
}

// Apply merges the patch into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.LocationID != nil {
		e.LocationID = *p.LocationID
	}
	if p.Seats != nil {
		e.Seats = *p.Seats
	}
}

// EventFilter narrows an event listing by start time.
type EventFilter string

const (
	FilterNone     EventFilter = ""
	FilterUpcoming EventFilter = "upcoming"
	FilterPast     EventFilter = "past"
)

// ParseEventFilter maps a query value to a filter. Unknown values list everything.
func ParseEventFilter(s string) EventFilter {
	switch EventFilter(s) {
	case FilterUpcoming:
		return FilterUpcoming
	case FilterPast:
		return FilterPast
	default:
		return FilterNone
	}
}

// RegistrationStatus is the state of a registration row.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	// StatusCancelled is accepted by the schema but never written; cancelling
	// a registration deletes the row.
	StatusCancelled RegistrationStatus = "cancelled"
)

// Registration represents a student's seat at an event.
type Registration struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event"`
	EventTitle  string             `json:"event_title"`
	StudentID   string             `json:"student"`
	StudentName string             `json:"student_name"`
	Status      RegistrationStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"-"`
}

// RegistrationDetail pairs a registration with its event.
type RegistrationDetail struct {
	Registration
	Event Event
}

// CreateEventRequest is the payload for creating a new event. Domain rules
// on times and seats are checked by the service, not by tags.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	LocationID  string    `json:"location" validate:"required"`
	Seats       int       `json:"seats"`
}

// UpdateEventRequest is the payload for updating an event; absent fields are kept.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	LocationID  *string    `json:"location"`
	Seats       *int       `json:"seats"`
}

// Patch converts the request into an EventPatch.
func (r UpdateEventRequest) Patch() EventPatch {
	return EventPatch{
		Title:       r.Title,
		Description: r.Description,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		LocationID:  r.LocationID,
		Seats:       r.Seats,
	}
}

// RegisterRequest is the payload for POST /registrations.
type RegisterRequest struct {
	EventID string `json:"event" validate:"required,uuid"`
}

// SignupRequest is the payload for creating an account.
type SignupRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,max=254,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,min=8,max=72"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

// LoginRequest is the payload for obtaining an access token.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a standard JSON acknowledgement envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
