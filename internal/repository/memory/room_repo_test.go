package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/repository/memory"
)

func TestRoomRepository_SaveAndFind(t *testing.T) {
	repo := memory.NewRoomRepository()
	ctx := context.Background()

	room := domain.NewRoom("r1", "Alpha")
	require.NoError(t, room.AddUser(domain.NewUser("u1", "Alice", true)))
	require.NoError(t, repo.Save(ctx, room))

	found, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Alpha", found.TeamName)
	assert.Equal(t, 1, found.UserCount())

	// Later entity mutation must not leak into the stored copy.
	room.FindUser("u1").SubmitVote("13")
	found, err = repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, found.FindUser("u1").Vote())
}

func TestRoomRepository_SaveIsUpsert(t *testing.T) {
	repo := memory.NewRoomRepository()
	ctx := context.Background()

	room := domain.NewRoom("r1", "Alpha")
	require.NoError(t, repo.Save(ctx, room))
	require.NoError(t, room.AddUser(domain.NewUser("u1", "Alice", true)))
	require.NoError(t, repo.Save(ctx, room))

	found, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, found.UserCount())

	total, err := repo.TotalRoomsCreated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRoomRepository_FindByID_Absent(t *testing.T) {
	repo := memory.NewRoomRepository()

	found, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRoomRepository_Delete(t *testing.T) {
	repo := memory.NewRoomRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.NewRoom("r1", "Alpha")))
	require.NoError(t, repo.Delete(ctx, "r1"))

	found, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, found)

	// Deleting an absent room is not an error.
	assert.NoError(t, repo.Delete(ctx, "r1"))
}

func TestRoomRepository_Counters(t *testing.T) {
	repo := memory.NewRoomRepository()
	ctx := context.Background()

	r1 := domain.NewRoom("r1", "Alpha")
	require.NoError(t, r1.AddUser(domain.NewUser("u1", "Alice", true)))
	require.NoError(t, r1.AddUser(domain.NewUser("u2", "Bob", false)))
	require.NoError(t, repo.Save(ctx, r1))

	r2 := domain.NewRoom("r2", "Beta")
	require.NoError(t, r2.AddUser(domain.NewUser("u3", "Carol", true)))
	require.NoError(t, repo.Save(ctx, r2))

	active, err := repo.ActiveRoomCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)

	total, err := repo.TotalRoomsCreated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	users, err := repo.TotalUsersJoined(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, users)
}
