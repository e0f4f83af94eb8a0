package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/taskstack/taskboard/internal/db"
)

type TaskRequestBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
	Progress    *int    `json:"progress"`
	DueDate     *string `json:"due_date"`
	ProjectID   *uint   `json:"project_id"`
	ParentID    *uint   `json:"parent_id"`
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.store.ListTasks()
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads, err := a.taskPayloads(tasks)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d tasks", len(payloads)), payloads)
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &TaskRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	input := db.TaskInput{
		ProjectID: body.ProjectID,
		ParentID:  body.ParentID,
	}
	if body.Title != nil {
		input.Title = *body.Title
	}
	if body.Description != nil {
		input.Description = *body.Description
	}
	if body.Priority != nil {
		input.Priority = *body.Priority
	}
	if body.Status != nil {
		input.Status = *body.Status
	}
	if body.DueDate != nil {
		due, err := parseDate(*body.DueDate)
		if err != nil {
			a.respond(w, http.StatusBadRequest, false, "due_date must be formatted as YYYY-MM-DD", nil)
			return
		}
		input.DueDate = due
	}

	task, err := a.store.CreateTask(input)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.log.Info().Uint("id", task.ID).Str("title", task.Title).Msg("task created")
	payload, err := a.singleTaskPayload(task)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusCreated, true, fmt.Sprintf("Task '%s' created", task.Title), payload)
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	task, err := a.store.GetTask(id)
	if err != nil {
		a.fail(w, err)
		return
	}

	payload, err := a.singleTaskPayload(task)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, "Task found", payload)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &TaskRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	patch := db.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Priority:    body.Priority,
		Status:      body.Status,
		Progress:    body.Progress,
		ProjectID:   body.ProjectID,
	}
	if body.DueDate != nil {
		due, err := parseDate(*body.DueDate)
		if err != nil {
			a.respond(w, http.StatusBadRequest, false, "due_date must be formatted as YYYY-MM-DD", nil)
			return
		}
		patch.DueDate = due
	}

	task, err := a.store.UpdateTask(id, patch)
	if err != nil {
		a.fail(w, err)
		return
	}

	payload, err := a.singleTaskPayload(task)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Task '%s' updated", task.Title), payload)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	title, err := a.store.DeleteTask(id)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.log.Info().Uint("id", id).Str("title", title).Msg("task deleted")
	a.respond(w, http.StatusOK, true, fmt.Sprintf("Task '%s' deleted", title), nil)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.Stats()
	if err != nil {
		a.fail(w, err)
		return
	}

	data := map[string]any{
		"total_users":       stats.Users,
		"total_categories":  stats.Categories,
		"total_projects":    stats.Projects,
		"total_tasks":       stats.Tasks,
		"total_comments":    stats.Comments,
		"total_attachments": stats.Attachments,
		"tasks_by_status":   stats.ByStatus,
		"tasks_by_priority": stats.ByPriority,
		"server_time":       time.Now().UTC().Format(time.RFC3339),
	}

	a.respond(w, http.StatusOK, true, "System running normally", data)
}

func (a *API) taskPayloads(tasks []db.Task) ([]TaskPayload, error) {
	ids := make([]uint, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	counts, err := a.store.CountTaskRelations(ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payloads := make([]TaskPayload, len(tasks))
	for i := range tasks {
		payloads[i] = taskPayload(&tasks[i], counts[tasks[i].ID], now)
	}
	return payloads, nil
}

func (a *API) singleTaskPayload(task *db.Task) (TaskPayload, error) {
	counts, err := a.store.CountTaskRelations([]uint{task.ID})
	if err != nil {
		return TaskPayload{}, err
	}
	return taskPayload(task, counts[task.ID], time.Now()), nil
}

func pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, errors.New("empty date")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
