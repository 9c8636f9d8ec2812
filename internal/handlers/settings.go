package handlers

import (
	"fmt"
	"net/http"
	"time"

	"pulsecrm/internal/apperr"
	"pulsecrm/internal/models"
)

// settingsResponse is the client view of a user's AI settings. The key
// itself is never returned.
type settingsResponse struct {
	AIFeaturesEnabled bool       `json:"ai_features_enabled"`
	HasAPIKey         bool       `json:"has_api_key"`
	UsageCount        int        `json:"usage_count"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
}

func newSettingsResponse(s *models.UserSettings) settingsResponse {
	if s == nil {
		return settingsResponse{}
	}
	return settingsResponse{
		AIFeaturesEnabled: s.AIFeaturesEnabled,
		HasAPIKey:         s.HasAPIKey(),
		UsageCount:        s.UsageCount,
		LastUsedAt:        s.LastUsedAt,
	}
}

// GetSettings returns the owner's AI settings.
func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.settings.Find(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, apperr.Persistence("load settings", err))
		return
	}
	writeData(w, http.StatusOK, newSettingsResponse(s))
}

// updateSettingsRequest changes the owner's AI settings. An omitted key
// keeps the stored one; an empty key clears it.
type updateSettingsRequest struct {
	AIFeaturesEnabled bool    `json:"ai_features_enabled"`
	OpenAIAPIKey      *string `json:"openai_api_key" validate:"omitempty,max=256"`
}

// UpdateSettings stores the owner's AI settings.
func (a *API) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	id := owner(r)
	us := &models.UserSettings{UserID: id, AIFeaturesEnabled: req.AIFeaturesEnabled}
	if req.OpenAIAPIKey != nil {
		us.APIKey = *req.OpenAIAPIKey
	} else {
		current, err := a.settings.Find(ctx, id)
		if err != nil {
			writeError(w, r, apperr.Persistence("load settings", err))
			return
		}
		if current != nil {
			us.APIKey = current.APIKey
		}
	}

	saved, err := a.settings.Upsert(ctx, us)
	if err != nil {
		writeError(w, r, apperr.Persistence("save settings", err))
		return
	}
	writeData(w, http.StatusOK, newSettingsResponse(saved))
}

// providerResponse reports the server's text-generation providers.
type providerResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// GetProvider reports the active and available providers.
func (a *API) GetProvider(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, providerResponse{
		Active:    a.aiRegistry.ActiveName(),
		Available: a.aiRegistry.Available(),
	})
}

// switchProviderRequest selects the active provider.
type switchProviderRequest struct {
	Provider string `json:"provider" validate:"required,oneof=openai gemini claude mistral"`
}

// SwitchProvider changes the active provider at runtime.
func (a *API) SwitchProvider(w http.ResponseWriter, r *http.Request) {
	var req switchProviderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.aiRegistry.SetActive(req.Provider); err != nil {
		writeError(w, r, &apperr.NotConfiguredError{
			Reason: fmt.Sprintf("Provider %s has no API key configured on the server.", req.Provider),
		})
		return
	}
	writeData(w, http.StatusOK, providerResponse{
		Active:    a.aiRegistry.ActiveName(),
		Available: a.aiRegistry.Available(),
	})
}
