package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/roster/internal/websocket"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// page starts the template data shared by every full page. live names the
// entities whose change notifications should reload the page.
func page(title, live string) map[string]any {
	return map[string]any{
		"Title": title,
		"Live":  live,
		"Error": "",
	}
}

func serverError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func notify(n websocket.Notifier, entity, action string, id int64) {
	if n != nil {
		n.Broadcast(websocket.NewMessage(entity, action, id))
	}
}
