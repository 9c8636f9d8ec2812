// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"pulsecrm/internal/wizard"
)

// wizardErrorCode is the single error code of the action endpoint.
const wizardErrorCode = "UI_WIZARD_ERROR"

// generateRequest is the body of POST /api/wizard/generate.
type generateRequest struct {
	UserRequest string     `json:"userRequest" validate:"required,max=2000"`
	SessionID   *uuid.UUID `json:"sessionId,omitempty"`
}

// Generate turns a styling request into a stored, inactive candidate.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := a.generator.Generate(r.Context(), owner(r), req.UserRequest, req.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

// wizardResponse is the success body of the action endpoint.
type wizardResponse struct {
	Success bool              `json:"success"`
	Data    *wizard.Candidate `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// Wizard runs one command of the single-endpoint action protocol:
// {action: generate|apply|rollback, userRequest, sessionId, customizationId}.
// Failures keep their status but always carry the UI_WIZARD_ERROR code.
func (a *API) Wizard(w http.ResponseWriter, r *http.Request) {
	var cmd wizard.Command
	if err := decodeJSON(w, r, &cmd); err != nil {
		writeErrorCode(w, r, err, wizardErrorCode)
		return
	}

	res, err := a.dispatcher.Dispatch(r.Context(), owner(r), cmd)
	if err != nil {
		writeErrorCode(w, r, err, wizardErrorCode)
		return
	}
	writeJSON(w, http.StatusOK, wizardResponse{Success: true, Data: res.Data, Message: res.Message})
}
