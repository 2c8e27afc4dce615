package testutil

import (
	"database/sql"
	"testing"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/pricing"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/repository"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/service"
)

// NewTestScenarioService builds a ScenarioService over the test database
// with a resolver that has no canned quotes; holdings added through it
// are stored without prices unless the test seeds a resolver itself.
func NewTestScenarioService(t *testing.T, db *sql.DB) *service.ScenarioService {
	t.Helper()

	return NewTestScenarioServiceWithResolver(t, db, NewTestResolver(t, nil, nil))
}

// NewTestScenarioServiceWithResolver builds a ScenarioService over the
// test database with the given pricing resolver.
func NewTestScenarioServiceWithResolver(t *testing.T, db *sql.DB, resolver *pricing.Resolver) *service.ScenarioService {
	t.Helper()

	return service.NewScenarioService(
		repository.NewScenarioRepository(db),
		repository.NewGraphRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewParamsRepository(db),
		resolver,
	)
}

// NewTestPriceService builds a PriceService over the test database with
// the given pricing resolver.
func NewTestPriceService(t *testing.T, db *sql.DB, resolver *pricing.Resolver) *service.PriceService {
	t.Helper()

	return service.NewPriceService(repository.NewHoldingRepository(db), resolver)
}
