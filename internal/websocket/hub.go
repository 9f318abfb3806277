// Package websocket maps live connections onto per-room broadcast groups and
// binds the wire protocol to RoomService calls.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/service"
)

// Hub is the process-wide connection dispatcher: exactly one instance is
// constructed at bootstrap and shared by every connection. It owns the
// transient mapping from connection to room membership; room state itself is
// only ever mutated through the RoomService.
type Hub struct {
	roomService *service.RoomService

	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool // room id -> subscribed clients
	stopped bool

	// disconnectGrace is how long a vanished connection may reconnect before
	// its user is purged from rooms.
	disconnectGrace time.Duration

	pending sync.WaitGroup // in-flight disconnect timers
}

func NewHub(roomService *service.RoomService, disconnectGrace time.Duration) *Hub {
	return &Hub{
		roomService:     roomService,
		clients:         make(map[*Client]bool),
		rooms:           make(map[string]map[*Client]bool),
		disconnectGrace: disconnectGrace,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		client.Close()
		return
	}
	h.clients[client] = true
}

// Unregister drops the client from its broadcast group and schedules the
// debounced disconnect cleanup. Safe to call once per connection; ReadPump is
// the only caller.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.leaveGroup(client)
	client.Close()
	h.mu.Unlock()

	log.Info().Str("connId", client.ID).Msg("connection closed")

	h.pending.Add(1)
	time.AfterFunc(h.disconnectGrace, func() {
		defer h.pending.Done()
		h.cleanupUser(client.ID)
	})
}

// cleanupUser runs after the disconnect grace period. Membership is re-read
// inside the service, so a client that reconnected under a fresh connection
// id is untouched.
func (h *Hub) cleanupUser(userID string) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	rooms, err := h.roomService.HandleUserDisconnect(context.Background(), userID)
	if err != nil {
		log.Error().Err(err).Str("userId", userID).Msg("disconnect cleanup failed")
		return
	}

	for _, room := range rooms {
		h.Broadcast(room.ID, EventRoomUpdate, room.Snapshot())
	}
}

// Stop closes every connection and refuses further registrations. Pending
// disconnect timers are waited out so cleanup finishes before the process
// exits.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	h.pending.Wait()
}

// handleEvent is the single dispatch point for inbound protocol events. Every
// handler failure becomes an error event to the originating connection only;
// the connection itself always survives.
func (h *Hub) handleEvent(c *Client, msg *Message) {
	var err error
	switch msg.Type {
	case EventCreateRoom:
		err = h.handleCreateRoom(c, msg.Payload)
	case EventJoinRoom:
		err = h.handleJoinRoom(c, msg.Payload)
	case EventVote:
		err = h.handleVote(c, msg.Payload)
	case EventToggleVotes:
		err = h.handleToggleVotes(c, msg.Payload)
	case EventStartNewTask:
		err = h.handleStartNewTask(c, msg.Payload)
	default:
		log.Warn().Str("connId", c.ID).Str("event", string(msg.Type)).Msg("unknown event")
		return
	}

	if err != nil {
		if userMessage(err) == internalErrorMessage {
			log.Error().Err(err).Str("connId", c.ID).Str("event", string(msg.Type)).
				Msg("event handler failed")
		}
		c.sendError(userMessage(err))
	}
}

func (h *Hub) handleCreateRoom(c *Client, payload json.RawMessage) error {
	var p CreateRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	user := domain.NewUser(c.ID, p.UserName, p.IsScrumMaster)
	room, err := h.roomService.CreateRoom(context.Background(), p.RoomID, p.TeamName, user)
	if err != nil {
		return err
	}

	h.bind(c, room.ID)
	h.Broadcast(room.ID, EventRoomCreated, room.Snapshot())
	return nil
}

func (h *Hub) handleJoinRoom(c *Client, payload json.RawMessage) error {
	var p JoinRoomPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	user := domain.NewUser(c.ID, p.UserName, p.IsScrumMaster)
	room, err := h.roomService.JoinRoom(context.Background(), p.RoomID, user)
	if err != nil {
		return err
	}

	h.bind(c, room.ID)
	h.Broadcast(room.ID, EventRoomUpdate, room.Snapshot())
	return nil
}

func (h *Hub) handleVote(c *Client, payload json.RawMessage) error {
	var p VotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	room, err := h.roomService.SubmitVote(context.Background(), p.RoomID, c.ID, p.Vote)
	if err != nil {
		return err
	}

	h.Broadcast(room.ID, EventRoomUpdate, room.Snapshot())
	return nil
}

func (h *Hub) handleToggleVotes(c *Client, payload json.RawMessage) error {
	var p ToggleVotesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	room, err := h.roomService.ToggleVotes(context.Background(), p.RoomID, c.ID)
	if err != nil {
		return err
	}

	h.Broadcast(room.ID, EventRoomUpdate, room.Snapshot())
	return nil
}

func (h *Hub) handleStartNewTask(c *Client, payload json.RawMessage) error {
	var p StartNewTaskPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}

	room, err := h.roomService.StartNewTask(context.Background(), p.RoomID, c.ID, p.TaskName)
	if err != nil {
		return err
	}

	h.Broadcast(room.ID, EventRoomUpdate, room.Snapshot())
	h.Broadcast(room.ID, EventNewTaskStarted, NewTaskStartedPayload{TaskName: p.TaskName})
	return nil
}

// bind subscribes the client to a room's broadcast group, switching groups if
// it was already bound elsewhere.
func (h *Hub) bind(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.roomID != "" && c.roomID != roomID {
		h.leaveGroup(c)
	}
	c.roomID = roomID
	group, ok := h.rooms[roomID]
	if !ok {
		group = make(map[*Client]bool)
		h.rooms[roomID] = group
	}
	group[c] = true
}

// leaveGroup must be called with h.mu held.
func (h *Hub) leaveGroup(c *Client) {
	if c.roomID == "" {
		return
	}
	if group, ok := h.rooms[c.roomID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.rooms, c.roomID)
		}
	}
}

// Broadcast sends one event to every connection currently subscribed to the
// room.
func (h *Hub) Broadcast(roomID string, eventType EventType, payload interface{}) {
	msg, err := NewMessage(eventType, payload)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Msg("failed to marshal broadcast")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("roomId", roomID).Msg("failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		client.enqueue(data)
	}
}

const internalErrorMessage = "Internal server error"

// userMessage maps an error to what the originating client sees. Entity and
// service failures carry their own text; anything else is a storage or
// programming failure and stays generic.
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrRoomExists),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, domain.ErrUserExists),
		domain.IsPermissionError(err):
		return err.Error()
	default:
		return internalErrorMessage
	}
}
