package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/testutil"
)

type fixture struct {
	db            *testutil.DB
	events        *EventService
	registrations *RegistrationService
	locations     *LocationService
	hall          model.Location
	admin         model.Actor
	student       model.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB()
	logger := discardLogger()
	return &fixture{
		db:            db,
		events:        NewEventService(db.Events(), logger),
		registrations: NewRegistrationService(db.Registrations(), db.Events(), logger),
		locations:     NewLocationService(db.Locations(), nil, logger),
		hall:          db.AddLocation(model.LocationHallA, 100),
		admin:         db.AddUser("alice", model.RoleAdmin),
		student:       db.AddUser("sam", model.RoleStudent),
	}
}

func tomorrow() time.Time {
	return time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
}

func (f *fixture) createEvent(t *testing.T, seats int, start time.Time) *model.Event {
	t.Helper()
	e, err := f.events.CreateEvent(context.Background(), f.admin, model.CreateEventRequest{
		Title:      "Orientation",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Hour),
		LocationID: f.hall.ID,
		Seats:      seats,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return e
}

func assertKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error %q, got nil", kind, msg)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	if ae.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", ae.Kind, kind, err)
	}
	if msg != "" && ae.Message != msg {
		t.Fatalf("message = %q, want %q", ae.Message, msg)
	}
}
