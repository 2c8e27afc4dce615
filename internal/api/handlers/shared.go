package handlers

import (
	"errors"
	"net/http"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
)

// statusForError maps a service error to its HTTP status code. Unmapped
// errors are treated as internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrScenarioNotFound),
		errors.Is(err, apperrors.ErrNodeNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrActionParamsNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound),
		errors.Is(err, apperrors.ErrSettingNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNotAPortfolio),
		errors.Is(err, apperrors.ErrNotAnAction),
		errors.Is(err, apperrors.ErrUnknownNodeKind),
		errors.Is(err, apperrors.ErrInvalidTicker),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, apperrors.ErrInvalidKeyMaterial):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrStructuralInconsistency):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
