// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the PulseCRM UI
// customization API. Handlers are grouped by concern (customizations,
// wizard, sessions, settings) and receive their dependencies through the
// API struct. Every handler runs behind middleware.Authenticate.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pulsecrm/internal/ai"
	"pulsecrm/internal/apperr"
	"pulsecrm/internal/customize"
	"pulsecrm/internal/middleware"
	"pulsecrm/internal/models"
	"pulsecrm/internal/wizard"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// sessionListLimit caps the number of sessions returned by ListSessions.
const sessionListLimit = 50

// Conversations is the session storage the handlers read and manage.
type Conversations interface {
	ListSessions(ctx context.Context, owner uuid.UUID, limit int) ([]models.ChatSession, error)
	CreateSession(ctx context.Context, owner uuid.UUID, title string) (*models.ChatSession, error)
	FindSession(ctx context.Context, owner, id uuid.UUID) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, owner, id uuid.UUID) error
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]models.ChatTurn, error)
}

// Settings is the per-owner AI settings storage.
type Settings interface {
	Find(ctx context.Context, owner uuid.UUID) (*models.UserSettings, error)
	Upsert(ctx context.Context, us *models.UserSettings) (*models.UserSettings, error)
}

// API groups all HTTP handlers and their dependencies.
type API struct {
	rules      *customize.Service
	generator  *wizard.Generator
	dispatcher *wizard.Dispatcher
	convos     Conversations
	settings   Settings
	aiRegistry *ai.Registry
}

// NewAPI creates the handler group.
func NewAPI(rules *customize.Service, generator *wizard.Generator, convos Conversations, settings Settings, aiRegistry *ai.Registry) *API {
	return &API{
		rules:      rules,
		generator:  generator,
		dispatcher: wizard.NewDispatcher(generator, rules),
		convos:     convos,
		settings:   settings,
		aiRegistry: aiRegistry,
	}
}

// envelope is the JSON success wrapper.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorBody is the JSON error wrapper.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeData writes data in the success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeError maps err to its status, code and user-facing message. Server
// side failures are logged with their full detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorCode(w, r, err, apperr.Code(err))
}

// writeErrorCode is writeError with an explicit error code.
func writeErrorCode(w http.ResponseWriter, r *http.Request, err error, code string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: apperr.Message(err)}})
}

// writeCSS writes a stylesheet response.
func writeCSS(w http.ResponseWriter, css string) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, css)
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.NewValidationError("body", "Request body is too large", err)
		}
		return apperr.NewValidationError("body", "Request body must be valid JSON", err)
	}
	return apperr.Validate(dst)
}

// owner returns the authenticated owner. Handlers are mounted behind
// middleware.Authenticate, so a missing owner is a wiring bug.
func owner(r *http.Request) uuid.UUID {
	id, ok := middleware.OwnerFromCtx(r.Context())
	if !ok {
		panic("handlers: request reached a handler without an authenticated owner")
	}
	return id
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("id %q: %w", raw, apperr.ErrNotFound)
	}
	return id, nil
}
