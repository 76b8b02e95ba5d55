package repository

import (
	"context"
	"errors"

	"github.com/aladdin-hotel/operations-sync-service/internal/core/domain"
	"github.com/aladdin-hotel/operations-sync-service/internal/core/ports"
)

// floorPlan is the fixed room inventory across three levels. Room numbers
// skip 4, 7, 14 and 17 by house convention.
var floorPlan = []struct {
	ID    string
	Type  string
	Floor int
}{
	// Level 1
	{"101", "DLXR", 1}, {"102", "SUIT", 1}, {"103", "DLXR", 1}, {"105", "STDT", 1},
	{"108", "SUIT", 1}, {"109", "MAINT", 1}, {"110", "DLXR", 1}, {"111", "DLXR", 1},
	{"112", "SUIT", 1}, {"113", "STDT", 1}, {"115", "DLXR", 1}, {"116", "DLXR", 1},
	{"118", "DLXR", 1},
	// Level 2
	{"201", "SUIT", 2}, {"202", "SUIT", 2}, {"203", "STDT", 2}, {"205", "SUIT", 2},
	{"206", "STDT", 2}, {"208", "STDT", 2}, {"209", "SUIT", 2}, {"210", "SUIT", 2},
	{"211", "SUIT", 2}, {"212", "DLXM", 2}, {"213", "DLXR", 2}, {"215", "SUIT", 2},
	{"216", "SUPK", 2}, {"218", "STDS", 2}, {"219", "DLXR", 2}, {"220", "DLXR", 2},
	// Level 3
	{"301", "SUIT", 3}, {"302", "SUIT", 3}, {"303", "STDT", 3}, {"305", "SUIT", 3},
	{"306", "STDT", 3}, {"308", "SUIT", 3}, {"309", "SUIT", 3}, {"310", "SUIT", 3},
	{"311", "SUIT", 3}, {"312", "DLXR", 3}, {"313", "DLXR", 3}, {"315", "SUIT", 3},
	{"316", "STDT", 3}, {"318", "DLXR", 3}, {"319", "DLXR", 3}, {"320", "DLXR", 3},
}

// SeedRooms provisions the floor plan. It is idempotent and never touches a
// room that already exists, so re-running it cannot clobber live status.
func SeedRooms(ctx context.Context, store ports.Store) error {
	for _, entry := range floorPlan {
		_, err := store.Rooms().Get(ctx, entry.ID)
		if err == nil {
			continue
		}
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		room := &domain.Room{
			ID:     entry.ID,
			Type:   entry.Type,
			Floor:  entry.Floor,
			Status: domain.RoomVacant,
		}
		if err := store.Rooms().Put(ctx, room); err != nil {
			return err
		}
	}
	return nil
}
