package repository

import (
	"database/sql"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// ParamsRepository provides data access methods for the action_param
// table. Every action node has at most one parameter row, keyed by the
// node ID.
type ParamsRepository struct {
	db *sql.DB
}

// NewParamsRepository creates a new ParamsRepository with the provided database connection.
func NewParamsRepository(db *sql.DB) *ParamsRepository {
	return &ParamsRepository{db: db}
}

// UpsertActionParams writes the parameter payload for an action node,
// replacing any previous payload.
func (r *ParamsRepository) UpsertActionParams(p model.ActionParams) error {
	query := `
          INSERT INTO action_param (node_id, kind, payload)
          VALUES (?, ?, ?)
          ON CONFLICT(node_id) DO UPDATE SET kind = excluded.kind, payload = excluded.payload
      `
	if _, err := r.db.Exec(query, p.NodeID, p.Kind, string(p.Payload)); err != nil {
		return fmt.Errorf("failed to upsert action params: %w", err)
	}
	return nil
}

// GetActionParamsOnNodeID retrieves the parameter payload of one action node.
func (r *ParamsRepository) GetActionParamsOnNodeID(nodeID string) (model.ActionParams, error) {
	query := `
          SELECT node_id, kind, payload
          FROM action_param
          WHERE node_id = ?
      `
	var p model.ActionParams
	var payload string

	err := r.db.QueryRow(query, nodeID).Scan(&p.NodeID, &p.Kind, &payload)
	if err == sql.ErrNoRows {
		return model.ActionParams{}, apperrors.ErrActionParamsNotFound
	}
	if err != nil {
		return model.ActionParams{}, fmt.Errorf("failed to query action params: %w", err)
	}

	p.Payload = []byte(payload)
	return p, nil
}

// GetActionParamsOnScenarioID retrieves the parameter payloads of every
// action node in a scenario, in node insertion order.
func (r *ParamsRepository) GetActionParamsOnScenarioID(scenarioID string) ([]model.ActionParams, error) {
	query := `
          SELECT p.node_id, p.kind, p.payload
          FROM action_param p
          JOIN node n ON n.id = p.node_id
          WHERE n.scenario_id = ?
          ORDER BY n.rowid
      `
	rows, err := r.db.Query(query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action_param table: %w", err)
	}
	defer rows.Close()

	params := []model.ActionParams{}

	for rows.Next() {
		var p model.ActionParams
		var payload string

		if err := rows.Scan(&p.NodeID, &p.Kind, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan action_param table results: %w", err)
		}

		p.Payload = []byte(payload)
		params = append(params, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action_param table: %w", err)
	}

	return params, nil
}

// DeleteActionParams removes the parameter payload of an action node.
// Deleting params that never existed is not an error.
func (r *ParamsRepository) DeleteActionParams(nodeID string) error {
	if _, err := r.db.Exec(`DELETE FROM action_param WHERE node_id = ?`, nodeID); err != nil {
		return fmt.Errorf("failed to delete action params: %w", err)
	}
	return nil
}
