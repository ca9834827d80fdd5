package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/roster/internal/calendar"
	"github.com/dukerupert/roster/internal/store"
	"github.com/dukerupert/roster/internal/websocket"
)

type CalendarHandler struct {
	events *store.EventStore
	views  *Views
	logger *slog.Logger
}

func NewCalendarHandler(es *store.EventStore, views *Views, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{events: es, views: views, logger: logger}
}

func (h *CalendarHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.views.render(w, r, http.StatusOK, "calendar.html", page("Calendar", websocket.EntityEvent))
}

// Feed serves every event as calendar entries. Clients revalidating with a
// matching If-None-Match get 304.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.All()
	if err != nil {
		serverError(w, h.logger, "failed to list events", err)
		return
	}

	body, err := json.Marshal(calendar.Project(events))
	if err != nil {
		serverError(w, h.logger, "failed to encode feed", err)
		return
	}

	etag := calendar.ETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
