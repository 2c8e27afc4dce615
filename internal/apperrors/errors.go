package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrScenarioNotFound indicates that a scenario with the given ID does not exist.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrNodeNotFound indicates that a graph node with the given ID does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrActionParamsNotFound indicates no parameters have been stored for an action node.
	ErrActionParamsNotFound = errors.New("action parameters not found")

	// ErrSymbolNotFound indicates that a price lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSettingNotFound indicates a settings key has no stored value.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrStructuralInconsistency indicates an unsupported graph shape, such
	// as an action node with more than one outgoing action edge. The graph
	// editor is expected to preserve the single-successor invariant; when
	// it has not, resolution stops instead of silently picking a branch.
	ErrStructuralInconsistency = errors.New("structural inconsistency in scenario graph")

	// ErrUnknownNodeKind indicates a stored node kind that the engine does not recognize.
	ErrUnknownNodeKind = errors.New("unknown node kind")

	// ErrNotAPortfolio indicates an operation that requires a portfolio node
	// was addressed at a node of a different kind.
	ErrNotAPortfolio = errors.New("node is not a portfolio")

	// ErrNotAnAction indicates an operation that requires an action node
	// was addressed at a portfolio or projection node.
	ErrNotAnAction = errors.New("node is not an action")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidTicker indicates an empty or malformed asset symbol.
	ErrInvalidTicker = errors.New("invalid ticker symbol")

	// ErrInvalidKeyMaterial indicates the configured fernet key cannot be decoded.
	ErrInvalidKeyMaterial = errors.New("invalid encryption key material")
)

// Operation failure errors represent system-level failures when retrieving
// or processing data.
var (
	ErrFailedToRetrieveScenarios = errors.New("failed to retrieve scenarios")
	ErrFailedToRetrieveScenario  = errors.New("failed to retrieve scenario")
	ErrFailedToRetrieveGraph     = errors.New("failed to retrieve scenario graph")
	ErrFailedToRetrieveHoldings  = errors.New("failed to retrieve holdings")
	ErrFailedToComputeProjection = errors.New("failed to compute projection")
	ErrFailedToRefreshPrices     = errors.New("failed to refresh prices")
	ErrFailedToGetVersionInfo    = errors.New("failed to get version information")
)
