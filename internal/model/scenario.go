package model

import "time"

// Scenario is one saved what-if workspace: a graph of portfolio, action
// and projection nodes plus the holdings and parameters hanging off them.
type Scenario struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Node is one stored graph vertex. Kind is persisted as its name and
// parsed back into the engine's tagged variant on load; it is never
// derived from the shape of the id.
type Node struct {
	ID         string `json:"id"`
	ScenarioID string `json:"scenarioId"`
	Kind       string `json:"kind"`
	Label      string `json:"label"`
}

// Edge is one stored directed connection between two nodes of a scenario.
type Edge struct {
	ID         string `json:"id"`
	ScenarioID string `json:"scenarioId"`
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
}
