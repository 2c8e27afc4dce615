package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// MakeID generates a fresh UUID for test records.
func MakeID() string {
	return uuid.NewString()
}

// ScenarioBuilder provides a fluent interface for creating test scenarios.
//
// Example usage:
//
//	// Simple creation with defaults
//	scenario := testutil.NewScenario().Build(t, db)
//
//	// Customized scenario
//	scenario := testutil.NewScenario().
//	    WithName("Rotation plan").
//	    Build(t, db)
type ScenarioBuilder struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// NewScenario creates a ScenarioBuilder with sensible defaults.
func NewScenario() *ScenarioBuilder {
	return &ScenarioBuilder{
		ID:          MakeID(),
		Name:        "Test Scenario",
		Description: "Test description",
		CreatedAt:   time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *ScenarioBuilder) WithID(id string) *ScenarioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *ScenarioBuilder) WithName(name string) *ScenarioBuilder {
	b.Name = name
	return b
}

// Build creates the scenario in the database and returns it.
func (b *ScenarioBuilder) Build(t *testing.T, db *sql.DB) model.Scenario {
	t.Helper()

	query := `
		INSERT INTO scenario (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description, b.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test scenario: %v", err)
	}

	return model.Scenario{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
	}
}

// NodeBuilder provides a fluent interface for creating test graph nodes.
type NodeBuilder struct {
	ID         string
	ScenarioID string
	Kind       string
	Label      string
}

// NewNode creates a NodeBuilder for the given scenario and kind.
func NewNode(scenarioID, kind string) *NodeBuilder {
	return &NodeBuilder{
		ID:         MakeID(),
		ScenarioID: scenarioID,
		Kind:       kind,
		Label:      "Test " + kind,
	}
}

// WithID sets a custom ID.
func (b *NodeBuilder) WithID(id string) *NodeBuilder {
	b.ID = id
	return b
}

// WithLabel sets a custom label.
func (b *NodeBuilder) WithLabel(label string) *NodeBuilder {
	b.Label = label
	return b
}

// Build creates the node in the database and returns it.
func (b *NodeBuilder) Build(t *testing.T, db *sql.DB) model.Node {
	t.Helper()

	query := `
		INSERT INTO node (id, scenario_id, kind, label)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.ScenarioID, b.Kind, b.Label)
	if err != nil {
		t.Fatalf("Failed to create test node: %v", err)
	}

	return model.Node{
		ID:         b.ID,
		ScenarioID: b.ScenarioID,
		Kind:       b.Kind,
		Label:      b.Label,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	ID         string
	NodeID     string
	Ticker     string
	Amount     float64
	Price      *float64
	AssetClass string
}

// NewHolding creates a HoldingBuilder for the given portfolio node.
func NewHolding(nodeID, ticker string, amount float64) *HoldingBuilder {
	return &HoldingBuilder{
		ID:         MakeID(),
		NodeID:     nodeID,
		Ticker:     ticker,
		Amount:     amount,
		AssetClass: "unknown",
	}
}

// WithPrice sets the stored market price.
func (b *HoldingBuilder) WithPrice(price float64) *HoldingBuilder {
	b.Price = &price
	return b
}

// WithAssetClass sets the stored asset class.
func (b *HoldingBuilder) WithAssetClass(class string) *HoldingBuilder {
	b.AssetClass = class
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	query := `
		INSERT INTO holding (id, node_id, ticker, amount, price, asset_class)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.NodeID, b.Ticker, b.Amount, b.Price, b.AssetClass)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID:         b.ID,
		NodeID:     b.NodeID,
		Ticker:     b.Ticker,
		Amount:     b.Amount,
		Price:      b.Price,
		AssetClass: b.AssetClass,
	}
}

// Convenience functions

// CreateScenario creates a scenario with the given name and default values.
func CreateScenario(t *testing.T, db *sql.DB, name string) model.Scenario {
	t.Helper()
	return NewScenario().WithName(name).Build(t, db)
}

// CreatePortfolioNode creates a portfolio node in the given scenario.
func CreatePortfolioNode(t *testing.T, db *sql.DB, scenarioID string) model.Node {
	t.Helper()
	return NewNode(scenarioID, "portfolio").WithLabel("Portfolio").Build(t, db)
}

// CreateEdge creates an edge between two nodes of a scenario.
func CreateEdge(t *testing.T, db *sql.DB, scenarioID, from, to string) model.Edge {
	t.Helper()

	edge := model.Edge{
		ID:         MakeID(),
		ScenarioID: scenarioID,
		FromNodeID: from,
		ToNodeID:   to,
	}

	query := `
		INSERT INTO edge (id, scenario_id, from_node_id, to_node_id)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, edge.ID, edge.ScenarioID, edge.FromNodeID, edge.ToNodeID)
	if err != nil {
		t.Fatalf("Failed to create test edge: %v", err)
	}

	return edge
}

// ChainNodes creates action nodes of the given kinds chained one after
// another from the given start node, returning the created nodes in
// chain order.
func ChainNodes(t *testing.T, db *sql.DB, scenarioID, startNodeID string, kinds ...string) []model.Node {
	t.Helper()

	nodes := make([]model.Node, 0, len(kinds))
	prev := startNodeID
	for _, kind := range kinds {
		node := NewNode(scenarioID, kind).Build(t, db)
		CreateEdge(t, db, scenarioID, prev, node.ID)
		nodes = append(nodes, node)
		prev = node.ID
	}
	return nodes
}

// SetActionParams stores the given payload struct as the action
// parameters of a node.
func SetActionParams(t *testing.T, db *sql.DB, nodeID, kind string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal action params: %v", err)
	}

	query := `
		INSERT INTO action_param (node_id, kind, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET kind = excluded.kind, payload = excluded.payload
	`

	if _, err := db.Exec(query, nodeID, kind, string(raw)); err != nil {
		t.Fatalf("Failed to store action params: %v", err)
	}
}
