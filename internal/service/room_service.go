package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/repository"
)

var (
	ErrRoomExists   = errors.New("Room already exists")
	ErrRoomNotFound = errors.New("Room not found")
	ErrUserNotFound = errors.New("User not found in room")
)

// RoomService turns each use case into a load → mutate → save cycle against
// the repository. It holds no room state of its own: every call re-reads the
// room, so the repository stays the single source of truth.
//
// Two concurrent cycles for the same room would race between load and save,
// so the service serializes them with a per-room lock.
type RoomService struct {
	roomRepo repository.RoomRepository
	locks    sync.Map // room id -> *sync.Mutex
}

func NewRoomService(roomRepo repository.RoomRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo}
}

func (s *RoomService) lockRoom(roomID string) func() {
	mu, _ := s.locks.LoadOrStore(roomID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *RoomService) CreateRoom(ctx context.Context, roomID, teamName string, user *domain.User) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	existing, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoomExists
	}

	room := domain.NewRoom(roomID, teamName)
	if err := room.AddUser(user); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}

	log.Info().Str("roomId", roomID).Str("userId", user.ID).Msg("room created")
	return room, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, roomID string, user *domain.User) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if err := room.AddUser(user); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}

	log.Info().Str("roomId", roomID).Str("userId", user.ID).Msg("user joined room")
	return room, nil
}

func (s *RoomService) SubmitVote(ctx context.Context, roomID, userID, vote string) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	user := room.FindUser(userID)
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.SubmitVote(vote)
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) ToggleVotes(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if err := room.ToggleVotes(userID); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) StartNewTask(ctx context.Context, roomID, userID, taskName string) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if err := room.StartNewTask(userID, taskName); err != nil {
		return nil, err
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// HandleUserDisconnect removes the user from every room that contains them
// and returns the affected rooms. Rooms left with no members are deleted.
// Best effort: a failure on one room does not stop the others.
func (s *RoomService) HandleUserDisconnect(ctx context.Context, userID string) ([]*domain.Room, error) {
	rooms, err := s.roomRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var updated []*domain.Room
	for _, stale := range rooms {
		if !stale.HasUser(userID) {
			continue
		}
		room, err := s.removeFromRoom(ctx, stale.ID, userID)
		if err != nil {
			log.Error().Err(err).Str("roomId", stale.ID).Str("userId", userID).
				Msg("disconnect cleanup failed for room")
			continue
		}
		if room != nil {
			updated = append(updated, room)
		}
	}
	return updated, nil
}

// removeFromRoom re-reads the room under its lock so cleanup never acts on a
// stale membership snapshot. Returns nil if the room vanished or the member
// rejoined under a new connection id in the meantime.
func (s *RoomService) removeFromRoom(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	defer s.lockRoom(roomID)()

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil || !room.HasUser(userID) {
		return nil, nil
	}

	room.RemoveUser(userID)
	if room.UserCount() == 0 {
		if err := s.roomRepo.Delete(ctx, roomID); err != nil {
			return nil, err
		}
		log.Info().Str("roomId", roomID).Msg("deleted empty room")
		return room, nil
	}
	if err := s.roomRepo.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *RoomService) GetActiveRoomsCount(ctx context.Context) (int64, error) {
	return s.roomRepo.ActiveRoomCount(ctx)
}

func (s *RoomService) GetTotalRoomsCreated(ctx context.Context) (int64, error) {
	return s.roomRepo.TotalRoomsCreated(ctx)
}

func (s *RoomService) GetTotalUsersJoined(ctx context.Context) (int64, error) {
	return s.roomRepo.TotalUsersJoined(ctx)
}

func (s *RoomService) GetAllRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.roomRepo.FindAll(ctx)
}
