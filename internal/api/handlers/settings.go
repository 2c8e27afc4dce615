package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/response"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// SettingsHandler handles settings-related HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// PricingSettings handles GET requests reporting the active equities
// quote provider. Key material is never returned.
func (h *SettingsHandler) PricingSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.GetPricingSettings()
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to retrieve pricing settings", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}

// UpdatePricingSettingsRequest is the PUT /api/settings/pricing body. An
// empty apiKey clears the stored key and falls back to the default
// provider.
type UpdatePricingSettingsRequest struct {
	APIKey string `json:"apiKey"`
}

// UpdatePricingSettings handles PUT requests storing the equities
// provider API key.
func (h *SettingsHandler) UpdatePricingSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdatePricingSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.settingsService.SetAPIKey(req.APIKey); err != nil {
		response.RespondError(w, statusForError(err), "failed to update pricing settings", err.Error())
		return
	}

	settings, err := h.settingsService.GetPricingSettings()
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to retrieve pricing settings", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}
