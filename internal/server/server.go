package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/roster/internal/config"
	"github.com/dukerupert/roster/internal/handler"
	"github.com/dukerupert/roster/internal/middleware"
	"github.com/dukerupert/roster/internal/store"
	ws "github.com/dukerupert/roster/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	memberH     *handler.MemberHandler
	eventH      *handler.EventHandler
	calendarH   *handler.CalendarHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	memberStore := store.NewMemberStore(db)
	tagStore := store.NewTagStore(db)
	gameStore := store.NewGameStore(db)
	eventStore := store.NewEventStore(db)
	reportStore := store.NewReportStore(db)

	views := handler.NewViews(logger.With("component", "views"))

	return &Server{
		db:          db,
		hub:         hub,
		memberH:     handler.NewMemberHandler(memberStore, tagStore, gameStore, reportStore, hub, views, logger.With("component", "members")),
		eventH:      handler.NewEventHandler(eventStore, memberStore, gameStore, hub, views, logger.With("component", "events")),
		calendarH:   handler.NewCalendarHandler(eventStore, views, logger.With("component", "calendar")),
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit, time.Minute),
		logger:      logger,
	}
}

// RateLimiter returns the limiter guarding form posts, for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the live-update hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Members
	mux.HandleFunc("GET /{$}", s.memberH.Index)
	mux.HandleFunc("GET /dashboard", s.memberH.Dashboard)
	mux.HandleFunc("GET /members/new", s.memberH.New)
	mux.Handle("POST /members", s.limited(s.memberH.Create))
	mux.HandleFunc("GET /members/{id}/edit", s.memberH.Edit)
	mux.Handle("POST /members/{id}", s.limited(s.memberH.Update))
	mux.Handle("POST /members/{id}/delete", s.limited(s.memberH.Delete))
	mux.Handle("POST /members/{id}/favorite", s.limited(s.memberH.ToggleFavorite))

	// Events
	mux.HandleFunc("GET /events", s.eventH.List)
	mux.HandleFunc("GET /events/new", s.eventH.New)
	mux.Handle("POST /events", s.limited(s.eventH.Create))
	mux.HandleFunc("GET /events/{id}", s.eventH.Detail)
	mux.HandleFunc("GET /events/{id}/edit", s.eventH.EditParticipation)
	mux.Handle("POST /events/{id}/participation", s.limited(s.eventH.UpdateParticipation))
	mux.Handle("POST /events/{id}/delete", s.limited(s.eventH.Delete))

	// Calendar
	mux.HandleFunc("GET /calendar", s.calendarH.Page)
	mux.HandleFunc("GET /calendar/events", s.calendarH.Feed)

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.RequestID(logged)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.rateLimiter.Middleware(h)
}
