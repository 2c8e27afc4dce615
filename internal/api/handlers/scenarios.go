package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/response"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/validation"
)

// ScenarioHandler handles scenario-related HTTP requests
type ScenarioHandler struct {
	scenarioService *service.ScenarioService
}

// NewScenarioHandler creates a new ScenarioHandler
func NewScenarioHandler(scenarioService *service.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{
		scenarioService: scenarioService,
	}
}

// Scenarios handles GET requests listing all scenarios.
func (h *ScenarioHandler) Scenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.scenarioService.GetScenarios()
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to retrieve scenarios", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, scenarios)
}

// CreateScenarioRequest is the POST /api/scenario body.
type CreateScenarioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateScenario handles POST requests creating a new scenario with one
// empty portfolio node.
func (h *ScenarioHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req CreateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	graph, err := h.scenarioService.CreateScenario(req.Name, req.Description)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to create scenario", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, graph)
}

// GetScenario handles GET requests for one scenario with its full graph.
func (h *ScenarioHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "uuid")

	graph, err := h.scenarioService.GetScenario(scenarioID)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to retrieve scenario", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, graph)
}

// DeleteScenario handles DELETE requests removing a scenario.
func (h *ScenarioHandler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "uuid")

	if err := h.scenarioService.DeleteScenario(scenarioID); err != nil {
		response.RespondError(w, statusForError(err), "failed to delete scenario", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// AddPortfolioRequest is the POST /api/scenario/{uuid}/portfolio body.
type AddPortfolioRequest struct {
	Label string `json:"label"`
}

// AddPortfolio handles POST requests adding a portfolio node to a scenario.
func (h *ScenarioHandler) AddPortfolio(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "uuid")

	var req AddPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	node, err := h.scenarioService.AddPortfolioNode(scenarioID, req.Label)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to add portfolio node", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, node)
}

// AddActionNodeRequest is the POST /api/scenario/{uuid}/node body.
type AddActionNodeRequest struct {
	AfterNodeID string `json:"afterNodeId"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
}

// AddActionNode handles POST requests chaining a new action node after an
// existing node.
func (h *ScenarioHandler) AddActionNode(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "uuid")

	var req AddActionNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateUUID(req.AfterNodeID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid afterNodeId", err.Error())
		return
	}

	node, err := h.scenarioService.AddActionNode(scenarioID, req.AfterNodeID, req.Kind, req.Label)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to add action node", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, node)
}

// Projection handles GET requests computing the projected ledger of one
// portfolio within a scenario.
func (h *ScenarioHandler) Projection(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "uuid")

	portfolioID := r.URL.Query().Get("portfolio_id")
	if err := validation.ValidateUUID(portfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "valid portfolio_id is required", err.Error())
		return
	}

	result, err := h.scenarioService.GetProjection(scenarioID, portfolioID)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to compute projection", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}
