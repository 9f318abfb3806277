package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sprintjam/sprintjam/internal/service"
)

// StatsHandler exposes the read-only reporting surface: aggregate counters
// plus a per-room status listing, all computed from RoomService reads.
type StatsHandler struct {
	roomService *service.RoomService
}

func NewStatsHandler(roomService *service.RoomService) *StatsHandler {
	return &StatsHandler{roomService: roomService}
}

type statsSummary struct {
	ActiveRooms int64 `json:"activeRooms"`
	TotalRooms  int64 `json:"totalRooms"`
	TotalUsers  int64 `json:"totalUsers"`
}

type statsUser struct {
	Name          string `json:"name"`
	IsScrumMaster bool   `json:"isScrumMaster"`
	HasVoted      bool   `json:"hasVoted"`
}

type statsRoom struct {
	RoomID       string      `json:"roomId"`
	TeamName     string      `json:"teamName"`
	UserCount    int         `json:"userCount"`
	Users        []statsUser `json:"users"`
	CurrentTask  *string     `json:"currentTask"`
	ShowVotes    bool        `json:"showVotes"`
	LastActivity time.Time   `json:"lastActivity"`
}

type statsResponse struct {
	Summary statsSummary `json:"summary"`
	Rooms   []statsRoom  `json:"rooms"`
}

func (h *StatsHandler) GetRoomStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	activeRooms, err := h.roomService.GetActiveRoomsCount(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	totalRooms, err := h.roomService.GetTotalRoomsCreated(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	totalUsers, err := h.roomService.GetTotalUsersJoined(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	rooms, err := h.roomService.GetAllRooms(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := statsResponse{
		Summary: statsSummary{
			ActiveRooms: activeRooms,
			TotalRooms:  totalRooms,
			TotalUsers:  totalUsers,
		},
		Rooms: make([]statsRoom, 0, len(rooms)),
	}

	for _, room := range rooms {
		users := make([]statsUser, 0, room.UserCount())
		for _, u := range room.Users() {
			users = append(users, statsUser{
				Name:          u.Name,
				IsScrumMaster: u.IsScrumMaster,
				HasVoted:      u.HasVoted(),
			})
		}
		resp.Rooms = append(resp.Rooms, statsRoom{
			RoomID:       room.ID,
			TeamName:     room.TeamName,
			UserCount:    room.UserCount(),
			Users:        users,
			CurrentTask:  room.CurrentTask(),
			ShowVotes:    room.ShowVotes(),
			LastActivity: room.LastActivity(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *StatsHandler) fail(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("room stats failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
