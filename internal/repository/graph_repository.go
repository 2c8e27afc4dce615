package repository

import (
	"database/sql"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// GraphRepository provides data access methods for the node and edge
// tables. Rows are always returned in insertion (rowid) order so chain
// enumeration stays deterministic across loads.
type GraphRepository struct {
	db *sql.DB
}

// NewGraphRepository creates a new GraphRepository with the provided database connection.
func NewGraphRepository(db *sql.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// CreateNode inserts a new node row.
func (r *GraphRepository) CreateNode(n model.Node) error {
	query := `
          INSERT INTO node (id, scenario_id, kind, label)
          VALUES (?, ?, ?, ?)
      `
	if _, err := r.db.Exec(query, n.ID, n.ScenarioID, n.Kind, n.Label); err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}
	return nil
}

// GetNodeOnID retrieves a single node by its ID.
func (r *GraphRepository) GetNodeOnID(nodeID string) (model.Node, error) {
	query := `
          SELECT id, scenario_id, kind, label
          FROM node
          WHERE id = ?
      `
	var n model.Node

	err := r.db.QueryRow(query, nodeID).Scan(
		&n.ID,
		&n.ScenarioID,
		&n.Kind,
		&n.Label,
	)
	if err == sql.ErrNoRows {
		return model.Node{}, apperrors.ErrNodeNotFound
	}
	if err != nil {
		return model.Node{}, fmt.Errorf("failed to query node: %w", err)
	}

	return n, nil
}

// GetNodesOnScenarioID retrieves all nodes of a scenario in insertion order.
func (r *GraphRepository) GetNodesOnScenarioID(scenarioID string) ([]model.Node, error) {
	query := `
          SELECT id, scenario_id, kind, label
          FROM node
          WHERE scenario_id = ?
          ORDER BY rowid
      `
	rows, err := r.db.Query(query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query node table: %w", err)
	}
	defer rows.Close()

	nodes := []model.Node{}

	for rows.Next() {
		var n model.Node

		err := rows.Scan(
			&n.ID,
			&n.ScenarioID,
			&n.Kind,
			&n.Label,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node table results: %w", err)
		}

		nodes = append(nodes, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating node table: %w", err)
	}

	return nodes, nil
}

// DeleteNode removes a node; its edges, holdings, and action parameters
// go with it through foreign-key cascades.
func (r *GraphRepository) DeleteNode(nodeID string) error {
	result, err := r.db.Exec(`DELETE FROM node WHERE id = ?`, nodeID)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNodeNotFound
	}
	return nil
}

// CreateEdge inserts a new edge row.
func (r *GraphRepository) CreateEdge(e model.Edge) error {
	query := `
          INSERT INTO edge (id, scenario_id, from_node_id, to_node_id)
          VALUES (?, ?, ?, ?)
      `
	if _, err := r.db.Exec(query, e.ID, e.ScenarioID, e.FromNodeID, e.ToNodeID); err != nil {
		return fmt.Errorf("failed to insert edge: %w", err)
	}
	return nil
}

// GetEdgesOnScenarioID retrieves all edges of a scenario in insertion order.
func (r *GraphRepository) GetEdgesOnScenarioID(scenarioID string) ([]model.Edge, error) {
	query := `
          SELECT id, scenario_id, from_node_id, to_node_id
          FROM edge
          WHERE scenario_id = ?
          ORDER BY rowid
      `
	return r.queryEdges(query, scenarioID)
}

// GetIncomingEdges retrieves the edges pointing at a node.
func (r *GraphRepository) GetIncomingEdges(nodeID string) ([]model.Edge, error) {
	query := `
          SELECT id, scenario_id, from_node_id, to_node_id
          FROM edge
          WHERE to_node_id = ?
          ORDER BY rowid
      `
	return r.queryEdges(query, nodeID)
}

// GetOutgoingEdges retrieves the edges leaving a node.
func (r *GraphRepository) GetOutgoingEdges(nodeID string) ([]model.Edge, error) {
	query := `
          SELECT id, scenario_id, from_node_id, to_node_id
          FROM edge
          WHERE from_node_id = ?
          ORDER BY rowid
      `
	return r.queryEdges(query, nodeID)
}

// DeleteEdge removes a single edge.
func (r *GraphRepository) DeleteEdge(edgeID string) error {
	if _, err := r.db.Exec(`DELETE FROM edge WHERE id = ?`, edgeID); err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	return nil
}

func (r *GraphRepository) queryEdges(query string, arg any) ([]model.Edge, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query edge table: %w", err)
	}
	defer rows.Close()

	edges := []model.Edge{}

	for rows.Next() {
		var e model.Edge

		err := rows.Scan(
			&e.ID,
			&e.ScenarioID,
			&e.FromNodeID,
			&e.ToNodeID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge table results: %w", err)
		}

		edges = append(edges, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edge table: %w", err)
	}

	return edges, nil
}
