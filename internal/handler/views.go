package handler

import (
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// eventView is the wire form of an event with its derived fields.
type eventView struct {
	model.Event
	LocationName   string `json:"location_name"`
	AvailableSeats int    `json:"available_seats"`
	IsPast         bool   `json:"is_past"`
}

func newEventView(e *model.Event, now time.Time) eventView {
	return eventView{
		Event:          *e,
		LocationName:   e.LocationName.Display(),
		AvailableSeats: e.AvailableSeats(),
		IsPast:         e.IsPast(now),
	}
}

func newEventViews(events []model.Event, now time.Time) []eventView {
	out := make([]eventView, 0, len(events))
	for i := range events {
		out = append(out, newEventView(&events[i], now))
	}
	return out
}

type locationView struct {
	model.Location
	LocationDisplay string `json:"location_display"`
}

func newLocationView(l *model.Location) locationView {
	return locationView{Location: *l, LocationDisplay: l.Name.Display()}
}

// myRegistrationView is a student's registration with its full event.
type myRegistrationView struct {
	ID        string                   `json:"id"`
	Event     eventView                `json:"event"`
	Status    model.RegistrationStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

func newMyRegistrationViews(details []model.RegistrationDetail, now time.Time) []myRegistrationView {
	out := make([]myRegistrationView, 0, len(details))
	for i := range details {
		d := &details[i]
		out = append(out, myRegistrationView{
			ID:        d.ID,
			Event:     newEventView(&d.Event, now),
			Status:    d.Status,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

type userView struct {
	*model.User
	Roles []model.Role `json:"roles"`
}

func newUserView(u *model.User, roles model.RoleSet) userView {
	return userView{User: u, Roles: roles.Roles()}
}
