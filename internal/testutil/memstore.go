// Package testutil provides in-memory stores for service and handler tests.
//
// All stores created from one DB share a single mutex, so every write is
// serialised the way the PostgreSQL repositories serialise writers with row
// locks. They return the same sentinel errors as package repository.
package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
)

// DB is the shared state behind the in-memory stores.
type DB struct {
	mu            sync.Mutex
	users         map[string]*model.User
	roles         map[string]model.RoleSet
	locations     map[string]*model.Location
	events        map[string]*model.Event
	registrations []*model.Registration
}

// NewDB returns an empty in-memory database.
func NewDB() *DB {
	return &DB{
		users:     make(map[string]*model.User),
		roles:     make(map[string]model.RoleSet),
		locations: make(map[string]*model.Location),
		events:    make(map[string]*model.Event),
	}
}

// AddLocation seeds a venue and returns it.
func (db *DB) AddLocation(name model.LocationName, capacity int) model.Location {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	loc := &model.Location{ID: uuid.New().String(), Name: name, Capacity: capacity, CreatedAt: now, UpdatedAt: now}
	db.locations[loc.ID] = loc
	return *loc
}

// AddUser seeds an account holding roles and returns the matching actor.
func (db *DB) AddUser(username string, roles ...model.Role) model.Actor {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	u := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     username + "@campus.test",
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.users[u.ID] = u
	db.roles[u.ID] = model.NewRoleSet(roles...)
	return model.Actor{UserID: u.ID, Username: u.Username, Roles: db.roles[u.ID]}
}

// AddEvent inserts an event without any validation, for seeding past events.
func (db *DB) AddEvent(e model.Event) model.Event {
	db.mu.Lock()
	defer db.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	db.events[e.ID] = &e
	return *db.view(&e)
}

// Events returns an EventStore over db.
func (db *DB) Events() *EventStore { return &EventStore{db: db} }

// Registrations returns a RegistrationStore over db.
func (db *DB) Registrations() *RegistrationStore { return &RegistrationStore{db: db} }

// Locations returns a LocationStore over db.
func (db *DB) Locations() *LocationStore { return &LocationStore{db: db} }

// Users returns a UserStore over db.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// RoleStore returns a RoleStore over db.
func (db *DB) RoleStore() *RoleStore { return &RoleStore{db: db} }

// registeredCount must be called with mu held.
func (db *DB) registeredCount(eventID string) int {
	n := 0
	for _, r := range db.registrations {
		if r.EventID == eventID && r.Status == model.StatusRegistered {
			n++
		}
	}
	return n
}

// view returns a copy of e with its joined and derived fields filled in.
// It must be called with mu held.
func (db *DB) view(e *model.Event) *model.Event {
	out := *e
	if loc, ok := db.locations[e.LocationID]; ok {
		out.LocationName = loc.Name
	}
	if u, ok := db.users[e.CreatedBy]; ok {
		out.CreatedByName = u.Username
	}
	out.RegisteredCount = db.registeredCount(e.ID)
	return &out
}

func (db *DB) liveEvent(id string) (*model.Event, bool) {
	e, ok := db.events[id]
	if !ok || e.IsDeleted() {
		return nil, false
	}
	return e, true
}

func (db *DB) registrationView(r *model.Registration) model.Registration {
	out := *r
	if e, ok := db.events[r.EventID]; ok {
		out.EventTitle = e.Title
	}
	if u, ok := db.users[r.StudentID]; ok {
		out.StudentName = u.Username
	}
	return out
}

// EventStore is an in-memory service.EventStore.
type EventStore struct {
	db *DB
}

func (s *EventStore) Create(_ context.Context, e *model.Event) (*model.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.checkSchedule(e); err != nil {
		return nil, err
	}
	stored := *e
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.db.events[stored.ID] = &stored
	return s.db.view(&stored), nil
}

func (s *EventStore) Update(_ context.Context, id string, mutate func(*model.Event) error) (*model.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.liveEvent(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	e := s.db.view(current)
	if err := mutate(e); err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.checkSchedule(e); err != nil {
		return nil, err
	}
	current.Title = e.Title
	current.Description = e.Description
	current.StartTime = e.StartTime
	current.EndTime = e.EndTime
	current.LocationID = e.LocationID
	current.Seats = e.Seats
	current.UpdatedAt = time.Now().UTC()
	return s.db.view(current), nil
}

func (s *EventStore) checkSchedule(e *model.Event) error {
	loc, ok := s.db.locations[e.LocationID]
	if !ok {
		return repository.ErrLocationNotFound
	}
	if e.Seats > loc.Capacity {
		return repository.ErrSeatsExceedCapacity
	}
	for _, other := range s.db.events {
		if other.ID == e.ID || other.IsDeleted() || other.LocationID != e.LocationID {
			continue
		}
		if other.Overlaps(e.StartTime, e.EndTime) {
			return repository.ErrOverlap
		}
	}
	return nil
}

func (s *EventStore) SoftDelete(_ context.Context, id, actorID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.liveEvent(id)
	if !ok {
		return 0, repository.ErrNotFound
	}
	now := time.Now().UTC()
	by := actorID
	e.DeletedAt = &now
	e.DeletedBy = &by
	e.UpdatedAt = now

	kept := s.db.registrations[:0]
	var removed int64
	for _, r := range s.db.registrations {
		if r.EventID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.db.registrations = kept
	return removed, nil
}

func (s *EventStore) GetByID(_ context.Context, id string) (*model.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.liveEvent(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.db.view(e), nil
}

func (s *EventStore) List(_ context.Context, filter model.EventFilter, now time.Time) ([]model.Event, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []model.Event
	for _, e := range s.db.events {
		if e.IsDeleted() {
			continue
		}
		switch filter {
		case model.FilterUpcoming:
			if e.StartTime.Before(now) {
				continue
			}
		case model.FilterPast:
			if !e.StartTime.Before(now) {
				continue
			}
		}
		out = append(out, *s.db.view(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

// RegistrationStore is an in-memory service.RegistrationStore.
type RegistrationStore struct {
	db *DB
}

func (s *RegistrationStore) Book(_ context.Context, eventID, studentID string, now time.Time) (*model.Registration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	e, ok := s.db.liveEvent(eventID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.StartTime.Before(now) {
		return nil, repository.ErrEventPast
	}
	for _, r := range s.db.registrations {
		if r.EventID == eventID && r.StudentID == studentID {
			return nil, repository.ErrAlreadyRegistered
		}
	}
	if s.db.registeredCount(eventID) >= e.Seats {
		return nil, repository.ErrEventFull
	}

	created := time.Now().UTC()
	reg := &model.Registration{
		ID:        uuid.New().String(),
		EventID:   eventID,
		StudentID: studentID,
		Status:    model.StatusRegistered,
		CreatedAt: created,
		UpdatedAt: created,
	}
	s.db.registrations = append(s.db.registrations, reg)
	out := s.db.registrationView(reg)
	return &out, nil
}

func (s *RegistrationStore) DeleteOwned(_ context.Context, id, studentID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for i, r := range s.db.registrations {
		if r.ID == id && r.StudentID == studentID {
			s.db.registrations = append(s.db.registrations[:i], s.db.registrations[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *RegistrationStore) GetByID(_ context.Context, id string) (*model.Registration, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, r := range s.db.registrations {
		if r.ID == id {
			out := s.db.registrationView(r)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *RegistrationStore) ListAll(context.Context) ([]model.Registration, error) {
	return s.filter(func(*model.Registration) bool { return true }), nil
}

func (s *RegistrationStore) ListByStudent(_ context.Context, studentID string) ([]model.Registration, error) {
	return s.filter(func(r *model.Registration) bool { return r.StudentID == studentID }), nil
}

func (s *RegistrationStore) ListByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	return s.filter(func(r *model.Registration) bool {
		return r.EventID == eventID && r.Status == model.StatusRegistered
	}), nil
}

func (s *RegistrationStore) ListDetailsByStudent(_ context.Context, studentID string) ([]model.RegistrationDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []model.RegistrationDetail
	for i := len(s.db.registrations) - 1; i >= 0; i-- {
		r := s.db.registrations[i]
		if r.StudentID != studentID || r.Status != model.StatusRegistered {
			continue
		}
		e, ok := s.db.liveEvent(r.EventID)
		if !ok {
			continue
		}
		out = append(out, model.RegistrationDetail{
			Registration: s.db.registrationView(r),
			Event:        *s.db.view(e),
		})
	}
	return out, nil
}

func (s *RegistrationStore) filter(keep func(*model.Registration) bool) []model.Registration {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []model.Registration
	for _, r := range s.db.registrations {
		if keep(r) {
			out = append(out, s.db.registrationView(r))
		}
	}
	return out
}

// LocationStore is an in-memory service.LocationStore.
type LocationStore struct {
	db *DB
}

func (s *LocationStore) List(context.Context) ([]model.Location, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]model.Location, 0, len(s.db.locations))
	for _, l := range s.db.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *LocationStore) GetByID(_ context.Context, id string) (*model.Location, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	l, ok := s.db.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *l
	return &out, nil
}

// UserStore is an in-memory auth.UserStore.
type UserStore struct {
	db *DB
}

func (s *UserStore) CreateWithRole(_ context.Context, u *model.User, role model.Role) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	s.db.users[u.ID] = &stored
	s.db.roles[u.ID] = model.NewRoleSet(role)
	return nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

// SetPasswordHash replaces the stored hash of an existing user.
func (s *UserStore) SetPasswordHash(id, hash string) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if u, ok := s.db.users[id]; ok {
		u.PasswordHash = hash
	}
}

// RoleStore is an in-memory role directory.
type RoleStore struct {
	db *DB
}

func (s *RoleStore) RolesOf(_ context.Context, userID string) (model.RoleSet, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.roles[userID], nil
}

func (s *RoleStore) Assign(_ context.Context, userID string, role model.Role) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[userID]; !ok {
		return repository.ErrNotFound
	}
	s.db.roles[userID] |= model.NewRoleSet(role)
	return nil
}

func (s *RoleStore) Revoke(_ context.Context, userID string, role model.Role) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if !s.db.roles[userID].Has(role) {
		return repository.ErrNotFound
	}
	s.db.roles[userID] &^= model.NewRoleSet(role)
	return nil
}

// MapCache is an in-memory service.Cache. Values are stored as JSON, the
// same encoding the Redis cache uses.
type MapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	hits  int
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{items: make(map[string][]byte)}
}

func (c *MapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dst)
}

func (c *MapCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

// Hits returns the number of successful lookups so far.
func (c *MapCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}
