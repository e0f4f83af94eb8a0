package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskstack/taskboard/internal/db"
)

type UserRequestBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.ListUsers()
	if err != nil {
		a.fail(w, err)
		return
	}

	counts, err := a.store.CountTasksBy("user_id")
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads := make([]UserPayload, len(users))
	for i := range users {
		payloads[i] = userPayload(&users[i], counts[users[i].ID])
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d users", len(payloads)), payloads)
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &UserRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	user, err := a.store.CreateUser(body.Name, body.Email)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusCreated, true, fmt.Sprintf("User '%s' created", user.Name), userPayload(user, 0))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	name, err := a.store.DeleteUser(id)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.log.Info().Uint("id", id).Msg("user deleted")
	a.respond(w, http.StatusOK, true, fmt.Sprintf("User '%s' deleted", name), nil)
}

type CategoryRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.store.ListCategories()
	if err != nil {
		a.fail(w, err)
		return
	}

	counts, err := a.store.CountTasksBy("category_id")
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads := make([]CategoryPayload, len(categories))
	for i := range categories {
		payloads[i] = categoryPayload(&categories[i], counts[categories[i].ID])
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d categories", len(payloads)), payloads)
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &CategoryRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	category, err := a.store.CreateCategory(db.CategoryInput{
		Name:        body.Name,
		Description: body.Description,
		Color:       body.Color,
		Icon:        body.Icon,
	})
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusCreated, true, fmt.Sprintf("Category '%s' created", category.Name), categoryPayload(category, 0))
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	name, err := a.store.DeleteCategory(id)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Category '%s' deleted", name), nil)
}

type ProjectRequestBody struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	Progress      *int    `json:"progress"`
	ResponsibleID *uint   `json:"responsible_id"`
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.store.ListProjects()
	if err != nil {
		a.fail(w, err)
		return
	}

	counts, err := a.store.CountTasksBy("project_id")
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads := make([]ProjectPayload, len(projects))
	for i := range projects {
		payloads[i] = projectPayload(&projects[i], counts[projects[i].ID])
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d projects", len(payloads)), payloads)
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &ProjectRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	input := db.ProjectInput{ResponsibleID: body.ResponsibleID}
	if body.Name != nil {
		input.Name = *body.Name
	}
	if body.Description != nil {
		input.Description = *body.Description
	}
	if body.Status != nil {
		input.Status = *body.Status
	}
	if body.Priority != nil {
		input.Priority = *body.Priority
	}

	project, err := a.store.CreateProject(input)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusCreated, true, fmt.Sprintf("Project '%s' created", project.Name), projectPayload(project, 0))
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	project, err := a.store.GetProject(id)
	if err != nil {
		a.fail(w, err)
		return
	}

	counts, err := a.store.CountTasksBy("project_id")
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, "Project found", projectPayload(project, counts[project.ID]))
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &ProjectRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	project, err := a.store.UpdateProject(id, db.ProjectPatch{
		Name:        body.Name,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		Progress:    body.Progress,
	})
	if err != nil {
		a.fail(w, err)
		return
	}

	counts, err := a.store.CountTasksBy("project_id")
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Project '%s' updated", project.Name), projectPayload(project, counts[project.ID]))
}
