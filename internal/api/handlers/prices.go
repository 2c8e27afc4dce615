package handlers

import (
	"net/http"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/api/response"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// PriceHandler handles price-related HTTP requests
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// Lookup handles GET requests resolving one symbol to its current quote.
//
// Endpoint: GET /api/prices/lookup?symbol=BTC
func (h *PriceHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	quote, err := h.priceService.Lookup(symbol)
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to look up symbol", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, quote)
}

// Refresh handles POST requests re-resolving every distinct held ticker.
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.priceService.RefreshAll(r.Context())
	if err != nil {
		response.RespondError(w, statusForError(err), "failed to refresh prices", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}
