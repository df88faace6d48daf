package service

import (
	"context"
	"testing"

	"github.com/Shivanand-hulikatti/campus-events/internal/apperr"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/testutil"
)

func TestLocationsReadThroughCache(t *testing.T) {
	db := testutil.NewDB()
	hall := db.AddLocation(model.LocationHallB, 80)
	db.AddLocation(model.LocationAuditorium, 300)
	cache := testutil.NewMapCache()
	svc := NewLocationService(db.Locations(), cache, discardLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		all, err := svc.ListLocations(ctx)
		if err != nil {
			t.Fatalf("ListLocations: %v", err)
		}
		if len(all) != 2 || all[0].Name != model.LocationAuditorium {
			t.Fatalf("unexpected locations: %+v", all)
		}
	}
	if cache.Hits() != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.Hits())
	}

	for i := 0; i < 2; i++ {
		got, err := svc.GetLocation(ctx, hall.ID)
		if err != nil {
			t.Fatalf("GetLocation: %v", err)
		}
		if got.Capacity != 80 || got.Name != model.LocationHallB {
			t.Fatalf("unexpected location: %+v", got)
		}
	}
	if cache.Hits() != 2 {
		t.Fatalf("cache hits = %d, want 2", cache.Hits())
	}
}

func TestGetLocationNotFound(t *testing.T) {
	db := testutil.NewDB()
	svc := NewLocationService(db.Locations(), nil, discardLogger())

	for _, id := range []string{"hall_a", "6f1c3f1e-8d2a-4c55-9d5e-000000000000"} {
		_, err := svc.GetLocation(context.Background(), id)
		assertKind(t, err, apperr.KindNotFound, model.MsgLocationNotFoundByID)
	}
}
