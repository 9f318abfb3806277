package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sprintjam/sprintjam/internal/repository"
)

// Janitor periodically evicts rooms that are observed empty at sweep time.
// Ordinary traffic may run concurrently with a sweep: deletion goes through
// the service's per-room lock and re-reads the room first, so a join that
// lands between observation and deletion wins.
type Janitor struct {
	service  *RoomService
	roomRepo repository.RoomRepository
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewJanitor(svc *RoomService, roomRepo repository.RoomRepository, interval time.Duration) *Janitor {
	return &Janitor{
		service:  svc,
		roomRepo: roomRepo,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *Janitor) Run() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(context.Background())
		case <-j.stop:
			return
		}
	}
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}

func (j *Janitor) sweep(ctx context.Context) {
	rooms, err := j.roomRepo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("janitor: listing rooms failed")
		return
	}

	for _, room := range rooms {
		if room.UserCount() > 0 || room.IsActive() {
			continue
		}
		if err := j.service.deleteIfEmpty(ctx, room.ID); err != nil {
			log.Error().Err(err).Str("roomId", room.ID).Msg("janitor: eviction failed")
		}
	}
}

// deleteIfEmpty removes the room only if it is still empty under the lock.
func (s *RoomService) deleteIfEmpty(ctx context.Context, roomID string) error {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || room.UserCount() > 0 {
		return nil
	}
	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		return err
	}
	log.Info().Str("roomId", roomID).Msg("janitor: evicted inactive room")
	return nil
}
