package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/response"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// HoldingHandler handles holding-related HTTP requests
type HoldingHandler struct {
	scenarioService *service.ScenarioService
}

// NewHoldingHandler creates a new HoldingHandler
func NewHoldingHandler(scenarioService *service.ScenarioService) *HoldingHandler {
	return &HoldingHandler{
		scenarioService: scenarioService,
	}
}

// UpdateHoldingRequest is the PUT /api/holding/{uuid} body.
type UpdateHoldingRequest struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}

// UpdateHolding handles PUT requests updating a holding's ticker and amount.
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")

	var req UpdateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	holding, err := h.scenarioService.UpdateHolding(holdingID, req.Ticker, req.Amount)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to update holding", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, holding)
}

// DeleteHolding handles DELETE requests removing a holding.
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	holdingID := chi.URLParam(r, "uuid")

	if err := h.scenarioService.DeleteHolding(holdingID); err != nil {
		response.RespondError(w, statusForError(err), "failed to delete holding", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}
