package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/luocheng/bidwriter/internal/api/shared"
	"github.com/luocheng/bidwriter/internal/service"
)

// UpdateSettingsRequest represents the request body for updating user settings
type UpdateSettingsRequest struct {
	ModelName string `json:"model_name" validate:"required,min=1"`
}

// SettingsResponse represents the current user settings
type SettingsResponse struct {
	ModelName string `json:"model_name"`
}

// SettingsHandler handles settings-related HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
	validator       *validator.Validate
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		validator:       validator.New(),
	}
}

// GetSettings handles GET /api/config requests
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.settingsService.Load()
	shared.RespondWithJSON(w, r, http.StatusOK, SettingsResponse{ModelName: settings.ModelName})
}

// UpdateSettings handles PUT /api/config requests
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.settingsService.Save(req.ModelName); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SettingsResponse{ModelName: req.ModelName})
}
