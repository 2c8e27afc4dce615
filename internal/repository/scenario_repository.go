package repository

import (
	"database/sql"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// ScenarioRepository provides data access methods for the scenario table.
type ScenarioRepository struct {
	db *sql.DB
}

// NewScenarioRepository creates a new ScenarioRepository with the provided database connection.
func NewScenarioRepository(db *sql.DB) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// CreateScenario inserts a new scenario row.
func (r *ScenarioRepository) CreateScenario(s model.Scenario) error {
	query := `
          INSERT INTO scenario (id, name, description, created_at)
          VALUES (?, ?, ?, ?)
      `
	if _, err := r.db.Exec(query, s.ID, s.Name, s.Description, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	return nil
}

// GetScenarios retrieves all scenarios in creation order.
// Returns an empty slice when none exist.
func (r *ScenarioRepository) GetScenarios() ([]model.Scenario, error) {
	query := `
          SELECT id, name, description, created_at
          FROM scenario
          ORDER BY created_at, rowid
      `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario table: %w", err)
	}
	defer rows.Close()

	scenarios := []model.Scenario{}

	for rows.Next() {
		var s model.Scenario

		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Description,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario table results: %w", err)
		}

		scenarios = append(scenarios, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenario table: %w", err)
	}

	return scenarios, nil
}

// GetScenarioOnID retrieves a single scenario by its ID.
func (r *ScenarioRepository) GetScenarioOnID(scenarioID string) (model.Scenario, error) {
	query := `
          SELECT id, name, description, created_at
          FROM scenario
          WHERE id = ?
      `
	var s model.Scenario

	err := r.db.QueryRow(query, scenarioID).Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Scenario{}, apperrors.ErrScenarioNotFound
	}
	if err != nil {
		return model.Scenario{}, fmt.Errorf("failed to query scenario: %w", err)
	}

	return s, nil
}

// DeleteScenario removes a scenario; nodes, edges, holdings, and action
// parameters go with it through foreign-key cascades.
func (r *ScenarioRepository) DeleteScenario(scenarioID string) error {
	result, err := r.db.Exec(`DELETE FROM scenario WHERE id = ?`, scenarioID)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrScenarioNotFound
	}
	return nil
}
