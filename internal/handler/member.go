package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/roster/internal/store"
	"github.com/dukerupert/roster/internal/websocket"
)

var sortOptions = []string{store.SortName, store.SortLatest, store.SortOldest, store.SortFavorite}

type MemberHandler struct {
	members *store.MemberStore
	tags    *store.TagStore
	games   *store.GameStore
	reports *store.ReportStore
	hub     websocket.Notifier
	views   *Views
	logger  *slog.Logger
}

func NewMemberHandler(ms *store.MemberStore, ts *store.TagStore, gs *store.GameStore, rs *store.ReportStore, hub websocket.Notifier, views *Views, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: ms, tags: ts, games: gs, reports: rs, hub: hub, views: views, logger: logger}
}

// Index lists members filtered by ?q=, ?tag=, ?game=, ?favorite=on and
// ordered by ?sort=.
func (h *MemberHandler) Index(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := store.MemberQuery{
		Keyword:      params.Get("q"),
		Tag:          params.Get("tag"),
		Game:         params.Get("game"),
		FavoriteOnly: params.Get("favorite") == "on",
		Sort:         params.Get("sort"),
	}
	if q.Sort == "" {
		q.Sort = store.SortName
	}

	members, err := h.members.Search(q)
	if err != nil {
		serverError(w, h.logger, "failed to list members", err)
		return
	}
	tags, err := h.tags.List()
	if err != nil {
		serverError(w, h.logger, "failed to list tags", err)
		return
	}
	games, err := h.games.List()
	if err != nil {
		serverError(w, h.logger, "failed to list games", err)
		return
	}

	data := page("Members", websocket.EntityMember)
	data["Members"] = members
	data["Tags"] = tags
	data["Games"] = games
	data["Keyword"] = q.Keyword
	data["SelectedTag"] = q.Tag
	data["SelectedGame"] = q.Game
	data["SelectedSort"] = q.Sort
	data["FavoriteOnly"] = q.FavoriteOnly
	data["SortOptions"] = sortOptions
	h.views.render(w, r, http.StatusOK, "index.html", data)
}

func (h *MemberHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard()
	if err != nil {
		serverError(w, h.logger, "failed to load dashboard", err)
		return
	}

	data := page("Dashboard", websocket.EntityMember)
	data["Dashboard"] = d
	h.views.render(w, r, http.StatusOK, "dashboard.html", data)
}

func (h *MemberHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	member, err := h.members.ToggleFavorite(id)
	if err != nil {
		serverError(w, h.logger, "failed to toggle favorite", err)
		return
	}
	if member == nil {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}

	notify(h.hub, websocket.EntityMember, websocket.ActionFavorited, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type memberForm struct {
	name  string
	note  string
	tags  string
	games string
}

func parseMemberForm(r *http.Request) (memberForm, error) {
	if err := r.ParseForm(); err != nil {
		return memberForm{}, err
	}
	return memberForm{
		name:  strings.TrimSpace(r.FormValue("name")),
		note:  r.FormValue("note"),
		tags:  r.FormValue("tags"),
		games: r.FormValue("games"),
	}, nil
}

func (h *MemberHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, title, action string, f memberForm, errMsg string) {
	data := page(title, "")
	data["Action"] = action
	data["Name"] = f.name
	data["Note"] = f.note
	data["TagString"] = f.tags
	data["GameString"] = f.games
	data["Error"] = errMsg
	h.views.render(w, r, status, "member_form.html", data)
}

func (h *MemberHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, "Add member", "/members", memberForm{}, "")
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := parseMemberForm(r)
	if err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	if f.name == "" {
		h.renderForm(w, r, http.StatusBadRequest, "Add member", "/members", f, "Name is required")
		return
	}

	member, err := h.members.Create(f.name, f.note, store.SplitNames(f.tags), store.SplitNames(f.games))
	if err != nil {
		serverError(w, h.logger, "failed to create member", err)
		return
	}

	h.logger.Info("member created", "member_id", member.ID)
	notify(h.hub, websocket.EntityMember, websocket.ActionCreated, member.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *MemberHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	member, err := h.members.GetByID(id)
	if err != nil {
		serverError(w, h.logger, "failed to get member", err)
		return
	}
	if member == nil {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}

	f := memberForm{name: member.Name, note: member.Note, tags: member.TagString(), games: member.GameString()}
	h.renderForm(w, r, http.StatusOK, "Edit "+member.Name, memberPath(id), f, "")
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	f, err := parseMemberForm(r)
	if err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	if f.name == "" {
		h.renderForm(w, r, http.StatusBadRequest, "Edit member", memberPath(id), f, "Name is required")
		return
	}

	_, err = h.members.Update(id, f.name, f.note, store.SplitNames(f.tags), store.SplitNames(f.games))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "failed to update member", err)
		return
	}

	notify(h.hub, websocket.EntityMember, websocket.ActionUpdated, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = h.members.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "failed to delete member", err)
		return
	}

	h.logger.Info("member deleted", "member_id", id)
	notify(h.hub, websocket.EntityMember, websocket.ActionDeleted, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func memberPath(id int64) string {
	return "/members/" + strconv.FormatInt(id, 10)
}
