// Package testutil provides an in-process server and websocket client for
// exercising the full event flow in tests.
package testutil

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sprintjam/sprintjam/internal/api"
	"github.com/sprintjam/sprintjam/internal/repository"
	"github.com/sprintjam/sprintjam/internal/repository/memory"
	"github.com/sprintjam/sprintjam/internal/service"
	"github.com/sprintjam/sprintjam/internal/websocket"
)

// DisconnectGrace is deliberately short so disconnect-cleanup tests finish
// quickly while still exercising the debounce path.
const DisconnectGrace = 100 * time.Millisecond

type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	repos := memory.NewRepositories()
	services := service.NewServices(repos)
	hub := websocket.NewHub(services.Room, DisconnectGrace)

	server := httptest.NewServer(api.NewRouter(services, hub))

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Hub:      hub,
	}

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return ts
}

// WebSocketURL returns the ws:// address of the hub endpoint.
func (ts *TestServer) WebSocketURL() string {
	return strings.Replace(ts.Server.URL, "http://", "ws://", 1) + "/api/v1/ws"
}

// URL returns the base http address of the server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}
