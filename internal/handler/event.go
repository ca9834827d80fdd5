package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/roster/internal/attendance"
	"github.com/dukerupert/roster/internal/model"
	"github.com/dukerupert/roster/internal/store"
	"github.com/dukerupert/roster/internal/websocket"
)

type EventHandler struct {
	events  *store.EventStore
	members *store.MemberStore
	games   *store.GameStore
	hub     websocket.Notifier
	views   *Views
	logger  *slog.Logger
}

func NewEventHandler(es *store.EventStore, ms *store.MemberStore, gs *store.GameStore, hub websocket.Notifier, views *Views, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: es, members: ms, games: gs, hub: hub, views: views, logger: logger}
}

// gameParam reads the optional ?game= id. A blank value is no filter.
func gameParam(r *http.Request) (int64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("game"))
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID, ok, err := gameParam(r)
	if err != nil {
		http.Error(w, "invalid game", http.StatusBadRequest)
		return
	}

	var filter *int64
	if ok {
		filter = &gameID
	}
	events, err := h.events.List(filter)
	if err != nil {
		serverError(w, h.logger, "failed to list events", err)
		return
	}
	games, err := h.games.List()
	if err != nil {
		serverError(w, h.logger, "failed to list games", err)
		return
	}

	data := page("Events", websocket.EntityEvent)
	data["Events"] = events
	data["Games"] = games
	data["SelectedGameID"] = gameID
	h.views.render(w, r, http.StatusOK, "events.html", data)
}

type eventForm struct {
	title       string
	date        string
	description string
	gameID      int64
}

// renderNew shows the create form. Members are only listed once a game is
// picked, and only those attached to it.
func (h *EventHandler) renderNew(w http.ResponseWriter, r *http.Request, status int, f eventForm, errMsg string) {
	games, err := h.games.List()
	if err != nil {
		serverError(w, h.logger, "failed to list games", err)
		return
	}

	var game *model.Game
	var members []model.Member
	if f.gameID != 0 {
		game, err = h.games.GetByID(f.gameID)
		if err != nil {
			serverError(w, h.logger, "failed to get game", err)
			return
		}
		if game != nil {
			members, err = h.members.ListByGame(game.ID)
			if err != nil {
				serverError(w, h.logger, "failed to list members", err)
				return
			}
		}
	}

	data := page("New event", "")
	data["Games"] = games
	data["SelectedGameID"] = f.gameID
	data["SelectedGame"] = game
	data["Members"] = members
	data["Statuses"] = attendance.Statuses
	data["EventTitle"] = f.title
	data["EventDate"] = f.date
	data["EventDescription"] = f.description
	data["Error"] = errMsg
	h.views.render(w, r, status, "event_new.html", data)
}

func (h *EventHandler) New(w http.ResponseWriter, r *http.Request) {
	gameID, _, err := gameParam(r)
	if err != nil {
		http.Error(w, "invalid game", http.StatusBadRequest)
		return
	}
	h.renderNew(w, r, http.StatusOK, eventForm{gameID: gameID}, "")
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	f := eventForm{
		title:       strings.TrimSpace(r.FormValue("title")),
		date:        strings.TrimSpace(r.FormValue("date")),
		description: r.FormValue("description"),
	}
	gameID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("game")), 10, 64)
	if err != nil || gameID <= 0 {
		h.renderNew(w, r, http.StatusBadRequest, f, "A game is required")
		return
	}
	f.gameID = gameID

	if f.title == "" {
		h.renderNew(w, r, http.StatusBadRequest, f, "Title is required")
		return
	}
	date, err := time.Parse(model.DateLayout, f.date)
	if err != nil {
		h.renderNew(w, r, http.StatusBadRequest, f, "Date must be YYYY-MM-DD")
		return
	}

	var participants []store.ParticipantInput
	for _, raw := range r.Form["members"] {
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.renderNew(w, r, http.StatusBadRequest, f, "Invalid member selection")
			return
		}
		participants = append(participants, store.ParticipantInput{
			MemberID: memberID,
			Status:   r.FormValue("status_" + raw),
		})
	}

	event, err := h.events.Create(store.EventInput{
		Title:        f.title,
		Date:         date,
		Description:  f.description,
		GameID:       gameID,
		Participants: participants,
	})
	switch {
	case errors.Is(err, store.ErrUnknownGame):
		h.renderNew(w, r, http.StatusBadRequest, eventForm{title: f.title, date: f.date, description: f.description}, "Unknown game")
		return
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "member not found", http.StatusNotFound)
		return
	case err != nil:
		serverError(w, h.logger, "failed to create event", err)
		return
	}

	h.logger.Info("event created", "event_id", event.ID, "participants", len(participants))
	notify(h.hub, websocket.EntityEvent, websocket.ActionCreated, event.ID)
	setFlash(w, "Event created")
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

// loadEvent resolves the {id} path value, writing 400/404 itself.
func (h *EventHandler) loadEvent(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}
	event, err := h.events.GetByID(id)
	if err != nil {
		serverError(w, h.logger, "failed to get event", err)
		return nil, false
	}
	if event == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return nil, false
	}
	return event, true
}

func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	participants, err := h.events.Participants(event.ID)
	if err != nil {
		serverError(w, h.logger, "failed to list participants", err)
		return
	}

	data := page(event.Title, websocket.EntityEvent)
	data["Event"] = event
	data["Statuses"] = attendance.Statuses
	data["Buckets"] = attendance.Bucket(participants)
	h.views.render(w, r, http.StatusOK, "event_detail.html", data)
}

func (h *EventHandler) EditParticipation(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	participants, err := h.events.Participants(event.ID)
	if err != nil {
		serverError(w, h.logger, "failed to list participants", err)
		return
	}

	data := page("Participation: "+event.Title, "")
	data["Event"] = event
	data["Participants"] = participants
	data["Statuses"] = attendance.Statuses
	h.views.render(w, r, http.StatusOK, "event_participation.html", data)
}

func (h *EventHandler) UpdateParticipation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	statuses := make(map[int64]string)
	for key := range r.PostForm {
		raw, ok := strings.CutPrefix(key, "status_")
		if !ok {
			continue
		}
		memberID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		statuses[memberID] = r.PostForm.Get(key)
	}

	err = h.events.UpdateParticipation(id, statuses)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "failed to update participation", err)
		return
	}

	notify(h.hub, websocket.EntityEvent, websocket.ActionParticipation, id)
	setFlash(w, "Participation updated")
	http.Redirect(w, r, "/events/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = h.events.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "failed to delete event", err)
		return
	}

	h.logger.Info("event deleted", "event_id", id)
	notify(h.hub, websocket.EntityEvent, websocket.ActionDeleted, id)
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
