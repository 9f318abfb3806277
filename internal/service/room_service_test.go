package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/repository/memory"
	"github.com/sprintjam/sprintjam/internal/service"
)

func newService() *service.RoomService {
	return service.NewRoomService(memory.NewRoomRepository())
}

func TestRoomService_CreateRoom(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	room, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, "Alpha", room.TeamName)
	require.Equal(t, 1, room.UserCount())
	assert.True(t, room.FindUser("u1").IsScrumMaster)

	// The room must be re-readable through the service.
	rooms, err := svc.GetAllRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestRoomService_CreateRoom_AlreadyExists(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)

	_, err = svc.CreateRoom(ctx, "r1", "Beta", domain.NewUser("u2", "Bob", true))
	assert.ErrorIs(t, err, service.ErrRoomExists)
}

func TestRoomService_JoinRoom(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)

	room, err := svc.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)
	assert.Equal(t, 2, room.UserCount())
}

func TestRoomService_JoinRoom_Failures(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)

	tests := []struct {
		name    string
		roomID  string
		user    *domain.User
		wantErr error
	}{
		{
			name:    "room not found",
			roomID:  "nope",
			user:    domain.NewUser("u2", "Bob", false),
			wantErr: service.ErrRoomNotFound,
		},
		{
			name:    "duplicate user id",
			roomID:  "r1",
			user:    domain.NewUser("u1", "Impostor", false),
			wantErr: domain.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.JoinRoom(ctx, tt.roomID, tt.user)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoomService_SubmitVote(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)

	room, err := svc.SubmitVote(ctx, "r1", "u1", "5")
	require.NoError(t, err)
	require.NotNil(t, room.FindUser("u1").Vote())
	assert.Equal(t, "5", *room.FindUser("u1").Vote())

	_, err = svc.SubmitVote(ctx, "nope", "u1", "5")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)

	_, err = svc.SubmitVote(ctx, "r1", "ghost", "5")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestRoomService_SubmitVote_Concurrent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)

	// Two simultaneous votes against the same room must both survive: the
	// per-room lock serializes the load-mutate-save cycles.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.SubmitVote(ctx, "r1", "u1", "5")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := svc.SubmitVote(ctx, "r1", "u2", "8")
		assert.NoError(t, err)
	}()
	wg.Wait()

	rooms, err := svc.GetAllRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	room := rooms[0]
	require.NotNil(t, room.FindUser("u1").Vote())
	require.NotNil(t, room.FindUser("u2").Vote())
	assert.Equal(t, "5", *room.FindUser("u1").Vote())
	assert.Equal(t, "8", *room.FindUser("u2").Vote())
}

func TestRoomService_ToggleVotes(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)

	room, err := svc.ToggleVotes(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.True(t, room.ShowVotes())

	_, err = svc.ToggleVotes(ctx, "r1", "u2")
	assert.ErrorIs(t, err, domain.ErrNotScrumMasterToggle)

	_, err = svc.ToggleVotes(ctx, "nope", "u1")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestRoomService_StartNewTask(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = svc.SubmitVote(ctx, "r1", "u1", "5")
	require.NoError(t, err)

	room, err := svc.StartNewTask(ctx, "r1", "u1", "T2")
	require.NoError(t, err)
	require.NotNil(t, room.CurrentTask())
	assert.Equal(t, "T2", *room.CurrentTask())
	assert.False(t, room.ShowVotes())
	assert.Nil(t, room.FindUser("u1").Vote())

	_, err = svc.StartNewTask(ctx, "nope", "u1", "T2")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestRoomService_HandleUserDisconnect(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)
	_, err = svc.CreateRoom(ctx, "r2", "Beta", domain.NewUser("u2", "Bob", true))
	require.NoError(t, err)

	// u2 is in both rooms; both must come back updated.
	updated, err := svc.HandleUserDisconnect(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, room := range updated {
		assert.False(t, room.HasUser("u2"))
	}

	// r2 is now empty and must be gone entirely.
	rooms, err := svc.GetAllRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0].ID)
}

func TestRoomService_HandleUserDisconnect_UnknownUser(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)

	updated, err := svc.HandleUserDisconnect(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, updated)
}

func TestRoomService_Counters(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = svc.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)
	_, err = svc.CreateRoom(ctx, "r2", "Beta", domain.NewUser("u3", "Carol", true))
	require.NoError(t, err)

	active, err := svc.GetActiveRoomsCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)

	total, err := svc.GetTotalRoomsCreated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	users, err := svc.GetTotalUsersJoined(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, users)
}
