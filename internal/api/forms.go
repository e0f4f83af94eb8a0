package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/taskstack/taskboard/internal/db"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

type indexData struct {
	Flash string
	Tasks []TaskPayload
}

func (a *API) handleHome(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.store.ListTasks()
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load tasks for listing page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	payloads, err := a.taskPayloads(tasks)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to shape tasks for listing page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Flash: r.URL.Query().Get("flash"),
		Tasks: payloads,
	}
	if err := indexTemplate.Execute(w, data); err != nil {
		a.log.Error().Err(err).Msg("failed to render listing page")
	}
}

// handleFormCreate is the non-JSON counterpart of POST /api/tasks: it
// reads form fields and redirects back to the listing page with a
// transient status message.
func (a *API) handleFormCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.redirectFlash(w, r, "invalid form submission")
		return
	}

	input := db.TaskInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
		Status:      r.PostFormValue("status"),
	}
	if due := r.PostFormValue("due_date"); due != "" {
		t, err := time.Parse("2006-01-02", due)
		if err != nil {
			a.redirectFlash(w, r, "due date must be formatted as YYYY-MM-DD")
			return
		}
		input.DueDate = &t
	}

	task, err := a.store.CreateTask(input)
	if err != nil {
		a.redirectFlash(w, r, a.flashMessage(err))
		return
	}

	a.redirectFlash(w, r, fmt.Sprintf("Task '%s' created", task.Title))
}

func (a *API) handleFormDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.redirectFlash(w, r, "invalid id")
		return
	}

	title, err := a.store.DeleteTask(id)
	if err != nil {
		a.redirectFlash(w, r, a.flashMessage(err))
		return
	}

	a.redirectFlash(w, r, fmt.Sprintf("Task '%s' deleted", title))
}

func (a *API) redirectFlash(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/?flash="+url.QueryEscape(message), http.StatusSeeOther)
}

// flashMessage mirrors the JSON error policy for the form surface:
// expected failures keep their message, anything else is logged and
// replaced so internal details never reach the page.
func (a *API) flashMessage(err error) string {
	var verr *db.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, db.ErrNotFound):
		return "task not found"
	case errors.Is(err, db.ErrCategoryInUse):
		return err.Error()
	default:
		a.log.Error().Err(err).Msg("form request failed")
		return "something went wrong, please try again"
	}
}
