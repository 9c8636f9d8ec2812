package handlers

import (
	"net/http"

	"pulsecrm/internal/apperr"
	"pulsecrm/internal/style"
)

// componentsResponse lists the styling vocabulary.
type componentsResponse struct {
	Components []string      `json:"components"`
	Themes     []style.Theme `json:"themes"`
}

// Components returns the component names and themes rules may use.
func (a *API) Components(w http.ResponseWriter, r *http.Request) {
	comps := append([]string{style.GeneralComponent}, style.Components...)
	writeData(w, http.StatusOK, componentsResponse{Components: comps, Themes: style.Themes})
}

// ListCustomizations returns the owner's rules, newest first.
func (a *API) ListCustomizations(w http.ResponseWriter, r *http.Request) {
	rules, err := a.rules.List(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rules)
}

// GetCustomization returns one of the owner's rules.
func (a *API) GetCustomization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := a.rules.Get(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rule)
}

// ApplyCustomization activates a rule.
func (a *API) ApplyCustomization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := a.rules.Apply(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rule)
}

// RollbackCustomization deactivates a rule.
func (a *API) RollbackCustomization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rule, err := a.rules.Rollback(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rule)
}

// previewResponse is returned when a preview starts.
type previewResponse struct {
	Enabled bool   `json:"enabled"`
	CSS     string `json:"css"`
}

// StartPreview shows a rule in the owner's preview stylesheet.
func (a *API) StartPreview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	css, err := a.rules.StartPreview(r.Context(), owner(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, previewResponse{Enabled: true, CSS: css})
}

// StopPreview removes the owner's preview stylesheet.
func (a *API) StopPreview(w http.ResponseWriter, r *http.Request) {
	if err := a.rules.StopPreview(r.Context(), owner(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActiveCSS serves the owner's published stylesheet.
func (a *API) ActiveCSS(w http.ResponseWriter, r *http.Request) {
	css, err := a.rules.Stylesheet(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCSS(w, css)
}

// PreviewCSS serves the owner's preview stylesheet, or 404 when no preview
// is showing.
func (a *API) PreviewCSS(w http.ResponseWriter, r *http.Request) {
	css, ok, err := a.rules.PreviewStylesheet(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.ErrNotFound)
		return
	}
	writeCSS(w, css)
}

// compileRequest is the body of the stateless compile endpoint.
type compileRequest struct {
	Component     string              `json:"component" validate:"component"`
	Modifications style.Modifications `json:"modifications"`
	Preview       bool                `json:"preview"`
}

// Compile renders a single rule to CSS without storing anything.
func (a *API) Compile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Preview {
		writeCSS(w, style.CompilePreview(req.Component, req.Modifications))
		return
	}
	writeCSS(w, style.CompileRule(req.Component, req.Modifications))
}
