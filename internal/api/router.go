package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sprintjam/sprintjam/internal/api/handlers"
	"github.com/sprintjam/sprintjam/internal/api/middleware"
	"github.com/sprintjam/sprintjam/internal/service"
	"github.com/sprintjam/sprintjam/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	statsHandler := handlers.NewStatsHandler(services.Room)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", statsHandler.GetRoomStats)
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
