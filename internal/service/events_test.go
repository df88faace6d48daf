package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

func TestCreateEventAvailableSeats(t *testing.T) {
	f := newFixture(t)
	e := f.createEvent(t, 50, tomorrow())

	if e.AvailableSeats() != 50 {
		t.Fatalf("available seats = %d, want 50", e.AvailableSeats())
	}
	if e.CreatedBy != f.admin.UserID {
		t.Fatalf("created_by = %q, want %q", e.CreatedBy, f.admin.UserID)
	}
	if e.LocationName != model.LocationHallA {
		t.Fatalf("location name = %q", e.LocationName)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	start := tomorrow()

	tests := []struct {
		name string
		req  model.CreateEventRequest
		msg  string
	}{
		{
			name: "start in the past",
			req:  model.CreateEventRequest{Title: "x", StartTime: time.Now().Add(-time.Hour), EndTime: start, LocationID: f.hall.ID, Seats: 10},
			msg:  model.MsgStartNotInFuture,
		},
		{
			name: "end before start",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start.Add(-time.Hour), LocationID: f.hall.ID, Seats: 10},
			msg:  model.MsgEndBeforeStart,
		},
		{
			name: "end equals start",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start, LocationID: f.hall.ID, Seats: 10},
			msg:  model.MsgEndBeforeStart,
		},
		{
			name: "seats exceed capacity",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start.Add(time.Hour), LocationID: f.hall.ID, Seats: 200},
			msg:  model.MsgSeatsExceedCapacity,
		},
		{
			name: "zero seats",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start.Add(time.Hour), LocationID: f.hall.ID, Seats: 0},
			msg:  model.MsgSeatsNotPositive,
		},
		{
			name: "blank title",
			req:  model.CreateEventRequest{Title: "  ", StartTime: start, EndTime: start.Add(time.Hour), LocationID: f.hall.ID, Seats: 10},
			msg:  model.MsgTitleRequired,
		},
		{
			name: "unknown location",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start.Add(time.Hour), LocationID: "6f1c3f1e-8d2a-4c55-9d5e-000000000000", Seats: 10},
			msg:  model.MsgLocationNotFound,
		},
		{
			name: "malformed location",
			req:  model.CreateEventRequest{Title: "x", StartTime: start, EndTime: start.Add(time.Hour), LocationID: "hall_a", Seats: 10},
			msg:  model.MsgLocationNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.CreateEvent(context.Background(), f.admin, tt.req)
			assertKind(t, err, apperr.KindValidation, tt.msg)
		})
	}
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	req := model.CreateEventRequest{Title: "x", StartTime: tomorrow(), EndTime: tomorrow().Add(time.Hour), LocationID: f.hall.ID, Seats: 1}

	_, err := f.events.CreateEvent(context.Background(), f.student, req)
	assertKind(t, err, apperr.KindPermissionDenied, "only admins can create events")

	_, err = f.events.CreateEvent(context.Background(), model.Actor{}, req)
	assertKind(t, err, apperr.KindUnauthenticated, "")
}

func TestSuperAdminCanCreateEvents(t *testing.T) {
	f := newFixture(t)
	root := f.db.AddUser("root", model.RoleSuperAdmin)
	req := model.CreateEventRequest{Title: "x", StartTime: tomorrow(), EndTime: tomorrow().Add(time.Hour), LocationID: f.hall.ID, Seats: 1}

	if _, err := f.events.CreateEvent(context.Background(), root, req); err != nil {
		t.Fatalf("CreateEvent as super_admin: %v", err)
	}
}

func TestCreateEventOverlap(t *testing.T) {
	f := newFixture(t)
	start := tomorrow()
	f.createEvent(t, 10, start) // [start, start+2h)

	tests := []struct {
		name       string
		start, end time.Time
		wantErr    bool
	}{
		{"same interval", start, start.Add(2 * time.Hour), true},
		{"starts inside", start.Add(time.Hour), start.Add(3 * time.Hour), true},
		{"contains", start.Add(-time.Hour), start.Add(3 * time.Hour), true},
		{"back to back after", start.Add(2 * time.Hour), start.Add(3 * time.Hour), false},
		{"back to back before", start.Add(-time.Hour), start, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Each non-overlapping case gets its own venue so cases stay independent.
			loc := f.hall
			if !tt.wantErr {
				loc = f.db.AddLocation(model.LocationHallB, 100)
				f.db.AddEvent(model.Event{
					Title: "existing", StartTime: start, EndTime: start.Add(2 * time.Hour),
					LocationID: loc.ID, Seats: 10, CreatedBy: f.admin.UserID,
				})
			}
			_, err := f.events.CreateEvent(context.Background(), f.admin, model.CreateEventRequest{
				Title: "second", StartTime: tt.start, EndTime: tt.end, LocationID: loc.ID, Seats: 10,
			})
			if tt.wantErr {
				assertKind(t, err, apperr.KindValidation, model.MsgLocationOverlap)
				return
			}
			if err != nil {
				t.Fatalf("expected no overlap, got %v", err)
			}
		})
	}
}

func TestOverlapIgnoresOtherLocationsAndDeletedEvents(t *testing.T) {
	f := newFixture(t)
	start := tomorrow()
	first := f.createEvent(t, 10, start)

	other := f.db.AddLocation(model.LocationAuditorium, 300)
	_, err := f.events.CreateEvent(context.Background(), f.admin, model.CreateEventRequest{
		Title: "elsewhere", StartTime: start, EndTime: start.Add(2 * time.Hour), LocationID: other.ID, Seats: 10,
	})
	if err != nil {
		t.Fatalf("same interval at another venue: %v", err)
	}

	if err := f.events.DeleteEvent(context.Background(), f.admin, first.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	f.createEvent(t, 10, start)
}

func TestUpdateEvent(t *testing.T) {
	f := newFixture(t)
	e := f.createEvent(t, 10, tomorrow())

	title := "Renamed"
	seats := 20
	updated, err := f.events.UpdateEvent(context.Background(), f.admin, e.ID, model.EventPatch{Title: &title, Seats: &seats})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Title != title || updated.Seats != seats {
		t.Fatalf("update not applied: %+v", updated)
	}
	// Moving within its own slot must not collide with itself.
	end := e.EndTime.Add(30 * time.Minute)
	if _, err := f.events.UpdateEvent(context.Background(), f.admin, e.ID, model.EventPatch{EndTime: &end}); err != nil {
		t.Fatalf("extend own slot: %v", err)
	}
}

func TestUpdateEventRules(t *testing.T) {
	f := newFixture(t)
	e := f.createEvent(t, 10, tomorrow())
	other := f.db.AddUser("bob", model.RoleAdmin)
	ctx := context.Background()

	seats := 500
	_, err := f.events.UpdateEvent(ctx, f.admin, e.ID, model.EventPatch{Seats: &seats})
	assertKind(t, err, apperr.KindValidation, model.MsgSeatsExceedCapacity)

	past := time.Now().Add(-time.Hour)
	_, err = f.events.UpdateEvent(ctx, f.admin, e.ID, model.EventPatch{StartTime: &past})
	assertKind(t, err, apperr.KindValidation, model.MsgStartNotInFuture)

	title := "x"
	_, err = f.events.UpdateEvent(ctx, other, e.ID, model.EventPatch{Title: &title})
	assertKind(t, err, apperr.KindPermissionDenied, "you can only update events created by you")

	_, err = f.events.UpdateEvent(ctx, f.student, e.ID, model.EventPatch{Title: &title})
	assertKind(t, err, apperr.KindPermissionDenied, "only admins can update events")

	_, err = f.events.UpdateEvent(ctx, f.admin, "6f1c3f1e-8d2a-4c55-9d5e-000000000000", model.EventPatch{Title: &title})
	assertKind(t, err, apperr.KindNotFound, model.MsgEventNotFound)
}

func TestUpdateEventConcurrentPatchesKeepBothFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		e := f.createEvent(t, 10, tomorrow().Add(time.Duration(i)*3*time.Hour))
		title := "Renamed"
		seats := 40

		var g errgroup.Group
		g.Go(func() error {
			_, err := f.events.UpdateEvent(ctx, f.admin, e.ID, model.EventPatch{Title: &title})
			return err
		})
		g.Go(func() error {
			_, err := f.events.UpdateEvent(ctx, f.admin, e.ID, model.EventPatch{Seats: &seats})
			return err
		})
		if err := g.Wait(); err != nil {
			t.Fatalf("UpdateEvent: %v", err)
		}

		got, err := f.events.GetEvent(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetEvent: %v", err)
		}
		if got.Title != title || got.Seats != seats {
			t.Fatalf("round %d: lost a field: title=%q seats=%d", i, got.Title, got.Seats)
		}
	}
}

func TestUpdateEventOverlapWithAnother(t *testing.T) {
	f := newFixture(t)
	start := tomorrow()
	f.createEvent(t, 10, start)
	later := f.createEvent(t, 10, start.Add(4*time.Hour))

	moved := start.Add(time.Hour)
	_, err := f.events.UpdateEvent(context.Background(), f.admin, later.ID, model.EventPatch{StartTime: &moved})
	assertKind(t, err, apperr.KindValidation, model.MsgLocationOverlap)
}

// Scenario E: the owner retires an event, registrations go with it, and a
// second delete finds nothing.
func TestDeleteEventCascadesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.createEvent(t, 10, tomorrow())
	other := f.db.AddUser("bob", model.RoleAdmin)
	second := f.db.AddUser("sue", model.RoleStudent)

	for _, s := range []model.Actor{f.student, second} {
		if _, err := f.registrations.Register(ctx, s, e.ID); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	err := f.events.DeleteEvent(ctx, other, e.ID)
	assertKind(t, err, apperr.KindPermissionDenied, "you can only delete events created by you")

	err = f.events.DeleteEvent(ctx, f.student, e.ID)
	assertKind(t, err, apperr.KindPermissionDenied, "only admins can delete events")

	if err := f.events.DeleteEvent(ctx, f.admin, e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	_, err = f.events.GetEvent(ctx, e.ID)
	assertKind(t, err, apperr.KindNotFound, model.MsgEventNotFound)

	all, err := f.registrations.ListAll(ctx, f.admin)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected registrations to be purged, got %d", len(all))
	}

	err = f.events.DeleteEvent(ctx, f.admin, e.ID)
	assertKind(t, err, apperr.KindNotFound, model.MsgEventNotFound)

	events, err := f.events.ListEvents(ctx, model.FilterNone)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("deleted event still listed: %+v", events)
	}
}

func TestListEventsFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := f.createEvent(t, 10, tomorrow())
	later := f.createEvent(t, 10, tomorrow().Add(48*time.Hour))
	past := f.db.AddEvent(model.Event{
		Title: "last week", StartTime: time.Now().Add(-7 * 24 * time.Hour), EndTime: time.Now().Add(-7*24*time.Hour + time.Hour),
		LocationID: f.hall.ID, Seats: 10, CreatedBy: f.admin.UserID,
	})

	tests := []struct {
		filter model.EventFilter
		want   []string
	}{
		{model.FilterNone, []string{later.ID, soon.ID, past.ID}},
		{model.FilterUpcoming, []string{later.ID, soon.ID}},
		{model.FilterPast, []string{past.ID}},
		{model.ParseEventFilter("bogus"), []string{later.ID, soon.ID, past.ID}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got, err := f.events.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("event[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestGetEventMalformedID(t *testing.T) {
	f := newFixture(t)
	_, err := f.events.GetEvent(context.Background(), "not-a-uuid")
	assertKind(t, err, apperr.KindNotFound, model.MsgEventNotFound)
}
