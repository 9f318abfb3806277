package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/sprintjam/sprintjam/internal/domain"
	"github.com/sprintjam/sprintjam/internal/websocket"
)

// WSClient is a test websocket client speaking the room protocol.
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var msg websocket.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.messages <- &msg:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the connection, which triggers the server's disconnect path.
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

func (c *WSClient) send(eventType websocket.EventType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(eventType, payload)
	if err != nil {
		c.t.Fatalf("failed to marshal %s payload: %v", eventType, err)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()

	if err != nil {
		c.t.Fatalf("failed to send %s: %v", eventType, err)
	}
}

func (c *WSClient) CreateRoom(roomID, userName, teamName string, isScrumMaster bool) {
	c.send(websocket.EventCreateRoom, websocket.CreateRoomPayload{
		RoomID:        roomID,
		UserName:      userName,
		TeamName:      teamName,
		IsScrumMaster: isScrumMaster,
	})
}

func (c *WSClient) JoinRoom(roomID, userName string, isScrumMaster bool) {
	c.send(websocket.EventJoinRoom, websocket.JoinRoomPayload{
		RoomID:        roomID,
		UserName:      userName,
		IsScrumMaster: isScrumMaster,
	})
}

func (c *WSClient) Vote(roomID, vote string) {
	c.send(websocket.EventVote, websocket.VotePayload{RoomID: roomID, Vote: vote})
}

func (c *WSClient) ToggleVotes(roomID string) {
	c.send(websocket.EventToggleVotes, websocket.ToggleVotesPayload{RoomID: roomID})
}

func (c *WSClient) StartNewTask(roomID, taskName string) {
	c.send(websocket.EventStartNewTask, websocket.StartNewTaskPayload{
		RoomID:   roomID,
		TaskName: taskName,
	})
}

// ExpectMessage waits for a message of the given type, skipping others.
func (c *WSClient) ExpectMessage(eventType websocket.EventType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				c.t.Fatalf("connection closed while waiting for %s", eventType)
			}
			if msg.Type == eventType {
				return msg
			}
		case err := <-c.errors:
			c.t.Fatalf("error while waiting for %s: %v", eventType, err)
		case <-deadline:
			c.t.Fatalf("timeout waiting for event %s", eventType)
		}
	}
}

// ExpectRoomCreated waits for a roomCreated event and decodes the room.
func (c *WSClient) ExpectRoomCreated(timeout time.Duration) *domain.RoomSnapshot {
	c.t.Helper()
	return c.decodeRoom(c.ExpectMessage(websocket.EventRoomCreated, timeout))
}

// ExpectRoomUpdate waits for a roomUpdate event and decodes the room.
func (c *WSClient) ExpectRoomUpdate(timeout time.Duration) *domain.RoomSnapshot {
	c.t.Helper()
	return c.decodeRoom(c.ExpectMessage(websocket.EventRoomUpdate, timeout))
}

func (c *WSClient) decodeRoom(msg *websocket.Message) *domain.RoomSnapshot {
	c.t.Helper()

	var snap domain.RoomSnapshot
	if err := json.Unmarshal(msg.Payload, &snap); err != nil {
		c.t.Fatalf("failed to decode room payload: %v", err)
	}
	return &snap
}

// ExpectNewTaskStarted waits for a newTaskStarted event.
func (c *WSClient) ExpectNewTaskStarted(timeout time.Duration) *websocket.NewTaskStartedPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.EventNewTaskStarted, timeout)
	var payload websocket.NewTaskStartedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode newTaskStarted payload: %v", err)
	}
	return &payload
}

// ExpectError waits for an error event.
func (c *WSClient) ExpectError(timeout time.Duration) *websocket.ErrorPayload {
	c.t.Helper()

	msg := c.ExpectMessage(websocket.EventError, timeout)
	var payload websocket.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode error payload: %v", err)
	}
	return &payload
}

// ExpectNoMessage verifies nothing arrives within the timeout.
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg := <-c.messages:
		if msg != nil {
			c.t.Fatalf("unexpected message received: %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

// DrainMessages discards buffered messages until the stream settles.
func (c *WSClient) DrainMessages() {
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				return
			}
			deadline = time.After(50 * time.Millisecond)
		case <-deadline:
			return
		case <-c.done:
			return
		}
	}
}
