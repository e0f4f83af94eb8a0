package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/taskstack/taskboard/internal/db"
)

// envelope is the fixed wrapper every API response uses.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

func (a *API) respond(w http.ResponseWriter, status int, success bool, message string, data any) {
	body := envelope{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error().Err(err).Msg("failed to encode response")
	}
}

// fail maps a store error onto the HTTP taxonomy. Unknown errors are
// logged with their cause and surfaced as a generic 500.
func (a *API) fail(w http.ResponseWriter, err error) {
	var verr *db.ValidationError

	switch {
	case errors.As(err, &verr):
		a.respond(w, http.StatusBadRequest, false, verr.Error(), nil)
	case errors.Is(err, db.ErrNotFound):
		a.respond(w, http.StatusNotFound, false, "record not found", nil)
	case errors.Is(err, db.ErrCategoryInUse):
		a.respond(w, http.StatusConflict, false, "category is referenced by tasks", nil)
	case errors.Is(err, db.ErrDefaultsMissing):
		a.log.Error().Err(err).Msg("system defaults missing")
		a.respond(w, http.StatusInternalServerError, false, "system defaults not configured", nil)
	default:
		a.log.Error().Err(err).Msg("request failed")
		a.respond(w, http.StatusInternalServerError, false, "internal server error", nil)
	}
}

func requireJSON(r *http.Request) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.New("Content-Type must be application/json")
	}
	return nil
}
