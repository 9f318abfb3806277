// Package memory provides an in-process RoomRepository used by tests and by
// single-node deployments that do not need durable storage.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/repository"
)

type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]domain.RoomSnapshot
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[string]domain.RoomSnapshot),
	}
}

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Room: NewRoomRepository(),
	}
}

// Save stores a snapshot of the room, so later mutations of the caller's
// entity do not leak into the store. Upsert semantics, keyed by room id.
func (r *RoomRepository) Save(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room.Snapshot()
	return nil
}

func (r *RoomRepository) FindByID(_ context.Context, id string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return snap.Restore(), nil
}

func (r *RoomRepository) FindAll(_ context.Context) ([]*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*domain.Room, 0, len(r.rooms))
	for _, snap := range r.rooms {
		rooms = append(rooms, snap.Restore())
	}
	// Stable enumeration order for callers that fan results out.
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (r *RoomRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	return nil
}

func (r *RoomRepository) ActiveRoomCount(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, snap := range r.rooms {
		if snap.Restore().IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *RoomRepository) TotalRoomsCreated(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rooms)), nil
}

func (r *RoomRepository) TotalUsersJoined(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for _, snap := range r.rooms {
		total += int64(len(snap.Users))
	}
	return total, nil
}
