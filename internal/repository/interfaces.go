package repository

import (
	"context"

	"github.com/sprintjam/sprintjam/internal/domain"
)

// RoomRepository is the persistence boundary for rooms. Save is an idempotent
// upsert keyed by room id; FindByID returns (nil, nil) when the room is
// absent; Delete of an absent room is not an error.
type RoomRepository interface {
	Save(ctx context.Context, room *domain.Room) error
	FindByID(ctx context.Context, id string) (*domain.Room, error)
	FindAll(ctx context.Context) ([]*domain.Room, error)
	Delete(ctx context.Context, id string) error

	// ActiveRoomCount counts rooms with at least one user or activity within
	// domain.ActiveWindow.
	ActiveRoomCount(ctx context.Context) (int64, error)
	TotalRoomsCreated(ctx context.Context) (int64, error)
	TotalUsersJoined(ctx context.Context) (int64, error)
}

type Repositories struct {
	Room RoomRepository
}
