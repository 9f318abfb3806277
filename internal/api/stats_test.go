package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/testutil"
)

func TestStatsEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ctx := context.Background()

	_, err := ts.Services.Room.CreateRoom(ctx, "r1", "Alpha", domain.NewUser("u1", "Alice", true))
	require.NoError(t, err)
	_, err = ts.Services.Room.JoinRoom(ctx, "r1", domain.NewUser("u2", "Bob", false))
	require.NoError(t, err)
	_, err = ts.Services.Room.SubmitVote(ctx, "r1", "u1", "5")
	require.NoError(t, err)

	resp, err := http.Get(ts.URL() + "/api/v1/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Summary struct {
			ActiveRooms int64 `json:"activeRooms"`
			TotalRooms  int64 `json:"totalRooms"`
			TotalUsers  int64 `json:"totalUsers"`
		} `json:"summary"`
		Rooms []struct {
			RoomID    string `json:"roomId"`
			TeamName  string `json:"teamName"`
			UserCount int    `json:"userCount"`
			Users     []struct {
				Name          string `json:"name"`
				IsScrumMaster bool   `json:"isScrumMaster"`
				HasVoted      bool   `json:"hasVoted"`
			} `json:"users"`
			ShowVotes bool `json:"showVotes"`
		} `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.EqualValues(t, 1, body.Summary.ActiveRooms)
	assert.EqualValues(t, 1, body.Summary.TotalRooms)
	assert.EqualValues(t, 2, body.Summary.TotalUsers)

	require.Len(t, body.Rooms, 1)
	room := body.Rooms[0]
	assert.Equal(t, "r1", room.RoomID)
	assert.Equal(t, "Alpha", room.TeamName)
	assert.Equal(t, 2, room.UserCount)
	require.Len(t, room.Users, 2)
	assert.Equal(t, "Alice", room.Users[0].Name)
	assert.True(t, room.Users[0].IsScrumMaster)
	assert.True(t, room.Users[0].HasVoted)
	assert.False(t, room.Users[1].HasVoted)
}

func TestHealthEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(ts.URL() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
