package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskstack/taskboard/internal/db"
)

type CommentRequestBody struct {
	Body     string `json:"body"`
	Type     string `json:"type"`
	Private  bool   `json:"private"`
	ParentID *uint  `json:"parent_id"`
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	comments, replies, err := a.store.ListComments(taskID)
	if err != nil {
		a.fail(w, err)
		return
	}

	payloads := make([]CommentPayload, len(comments))
	for i := range comments {
		payloads[i] = commentPayload(&comments[i], replies[comments[i].ID])
	}

	a.respond(w, http.StatusOK, true, fmt.Sprintf("Found %d comments", len(payloads)), payloads)
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid id", nil)
		return
	}

	if err := requireJSON(r); err != nil {
		a.respond(w, http.StatusBadRequest, false, err.Error(), nil)
		return
	}

	body := &CommentRequestBody{}
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		a.respond(w, http.StatusBadRequest, false, "invalid JSON body", nil)
		return
	}

	comment, err := a.store.CreateComment(taskID, db.CommentInput{
		Body:     body.Body,
		Type:     body.Type,
		Private:  body.Private,
		ParentID: body.ParentID,
	})
	if err != nil {
		a.fail(w, err)
		return
	}

	a.respond(w, http.StatusCreated, true, "Comment created", commentPayload(comment, 0))
}
