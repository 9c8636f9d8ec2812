package handlers

import (
	"errors"
	"net/http"
	"strings"

	"pulsecrm/internal/apperr"
	"pulsecrm/internal/models"
	"pulsecrm/internal/store"
)

// ListSessions returns the owner's most recently used conversations.
func (a *API) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.convos.ListSessions(r.Context(), owner(r), sessionListLimit)
	if err != nil {
		writeError(w, r, apperr.Persistence("list sessions", err))
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	writeData(w, http.StatusOK, sessions)
}

// createSessionRequest opens a conversation. The title is usually the first
// message the user typed.
type createSessionRequest struct {
	Title string `json:"title" validate:"required"`
}

// CreateSession opens a new conversation.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	title := models.SessionTitle(strings.TrimSpace(req.Title))
	session, err := a.convos.CreateSession(r.Context(), owner(r), title)
	if err != nil {
		writeError(w, r, apperr.Persistence("create session", err))
		return
	}
	writeData(w, http.StatusCreated, session)
}

// ListTurns returns a conversation's history, oldest first.
func (a *API) ListTurns(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	session, err := a.convos.FindSession(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, r, apperr.Persistence("find session", err))
		return
	}
	if session == nil {
		writeError(w, r, apperr.ErrNotFound)
		return
	}

	turns, err := a.convos.ListTurns(r.Context(), session.ID)
	if err != nil {
		writeError(w, r, apperr.Persistence("list turns", err))
		return
	}
	if turns == nil {
		turns = []models.ChatTurn{}
	}
	writeData(w, http.StatusOK, turns)
}

// DeleteSession deletes a conversation and its turns.
func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := a.convos.DeleteSession(r.Context(), owner(r), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, apperr.ErrNotFound)
			return
		}
		writeError(w, r, apperr.Persistence("delete session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
