package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

const locationsCacheKey = "locations:all"

func locationCacheKey(id string) string {
	return "locations:" + id
}

// LocationService serves the read-only venue catalog. Venues never change
// at runtime, so reads go through an optional cache.
type LocationService struct {
	locations LocationStore
	cache     Cache
	logger    *slog.Logger
}

// NewLocationService constructs a LocationService. cache may be nil.
func NewLocationService(locations LocationStore, cache Cache, logger *slog.Logger) *LocationService {
	return &LocationService{locations: locations, cache: cache, logger: logger}
}

// ListLocations returns every venue.
func (s *LocationService) ListLocations(ctx context.Context) ([]model.Location, error) {
	var cached []model.Location
	if s.lookup(ctx, locationsCacheKey, &cached) {
		return cached, nil
	}

	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	s.store(ctx, locationsCacheKey, locations)
	return locations, nil
}

// GetLocation returns a venue by ID.
func (s *LocationService) GetLocation(ctx context.Context, id string) (*model.Location, error) {
	if !validID(id) {
		return nil, apperr.NotFound(model.MsgLocationNotFoundByID)
	}

	var cached model.Location
	if s.lookup(ctx, locationCacheKey(id), &cached) {
		return &cached, nil
	}

	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get location", err, model.MsgLocationNotFoundByID)
	}
	s.store(ctx, locationCacheKey(id), loc)
	return loc, nil
}

// lookup reads from the cache. Cache failures are logged and treated as misses.
func (s *LocationService) lookup(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.WarnContext(ctx, "location cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *LocationService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "location cache write failed", "key", key, "error", err)
	}
}
