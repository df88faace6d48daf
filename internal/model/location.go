package model

import "time"

// LocationName identifies one of the bookable venues.
type LocationName string

const (
	LocationHallA           LocationName = "hall_a"
	LocationHallB           LocationName = "hall_b"
	LocationHallC           LocationName = "hall_c"
	LocationAuditorium      LocationName = "auditorium"
	LocationConferenceRoom1 LocationName = "conference_room_1"
	LocationConferenceRoom2 LocationName = "conference_room_2"
	LocationOutdoor         LocationName = "outdoor"
)

var locationLabels = map[LocationName]string{
	LocationHallA:           "Hall A",
	LocationHallB:           "Hall B",
	LocationHallC:           "Hall C",
	LocationAuditorium:      "Auditorium",
	LocationConferenceRoom1: "Conference Room 1",
	LocationConferenceRoom2: "Conference Room 2",
	LocationOutdoor:         "Outdoor",
}

// Display returns the human-readable venue label.
func (n LocationName) Display() string {
	if label, ok := locationLabels[n]; ok {
		return label
	}
	return string(n)
}

// Location is a venue with a fixed capacity. Locations are provisioned
// out of band and never mutated through the API.
type Location struct {
	ID        string       `json:"id"`
	Name      LocationName `json:"location"`
	Capacity  int          `json:"capacity"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
