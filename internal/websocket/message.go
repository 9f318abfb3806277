package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	// Client to Server
	EventCreateRoom   EventType = "createRoom"
	EventJoinRoom     EventType = "joinRoom"
	EventVote         EventType = "vote"
	EventToggleVotes  EventType = "toggleVotes"
	EventStartNewTask EventType = "startNewTask"

	// Server to Client
	EventRoomCreated    EventType = "roomCreated"
	EventRoomUpdate     EventType = "roomUpdate"
	EventNewTaskStarted EventType = "newTaskStarted"
	EventError          EventType = "error"
)

type Message struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(eventType EventType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type CreateRoomPayload struct {
	RoomID        string `json:"roomId"`
	UserName      string `json:"userName"`
	TeamName      string `json:"teamName"`
	IsScrumMaster bool   `json:"isScrumMaster"`
}

type JoinRoomPayload struct {
	RoomID        string `json:"roomId"`
	UserName      string `json:"userName"`
	IsScrumMaster bool   `json:"isScrumMaster"`
}

type VotePayload struct {
	RoomID string `json:"roomId"`
	Vote   string `json:"vote"`
}

type ToggleVotesPayload struct {
	RoomID string `json:"roomId"`
}

type StartNewTaskPayload struct {
	RoomID   string `json:"roomId"`
	TaskName string `json:"taskName"`
}

// Server to Client payloads; roomCreated and roomUpdate carry a
// domain.RoomSnapshot directly.

type NewTaskStartedPayload struct {
	TaskName string `json:"taskName"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
