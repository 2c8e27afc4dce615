package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/response"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	scenarioService *service.ScenarioService
}

// NewNodeHandler creates a new NodeHandler
func NewNodeHandler(scenarioService *service.ScenarioService) *NodeHandler {
	return &NodeHandler{
		scenarioService: scenarioService,
	}
}

// DeleteNode handles DELETE requests removing a node. Action nodes are
// spliced out so the rest of their chain survives.
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "uuid")

	if err := h.scenarioService.DeleteNode(nodeID); err != nil {
		response.RespondError(w, statusForError(err), "failed to delete node", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// UpdateParams handles PUT requests storing an action node's parameter
// payload. The body is the raw kind-shaped payload.
func (h *NodeHandler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "uuid")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "failed to read request body", err.Error())
		return
	}
	if !json.Valid(payload) {
		response.RespondError(w, http.StatusBadRequest, "request body is not valid JSON", "")
		return
	}

	if err := h.scenarioService.UpdateActionParams(nodeID, payload); err != nil {
		response.RespondError(w, statusForError(err), "failed to update action params", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Ledger handles GET requests for the intermediate ledger around one
// action node.
func (h *NodeHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "uuid")

	snapshot, err := h.scenarioService.GetNodeSnapshot(nodeID)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to compute node ledger", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, snapshot)
}

// AddHoldingRequest is the POST /api/node/{uuid}/holding body.
type AddHoldingRequest struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}

// AddHolding handles POST requests adding a holding to a portfolio node.
func (h *NodeHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "uuid")

	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	holding, err := h.scenarioService.AddHolding(nodeID, req.Ticker, req.Amount)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to add holding", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusCreated, holding)
}
