package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Scenario table
		CREATE TABLE scenario (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Node table
		CREATE TABLE node (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			scenario_id VARCHAR(36) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			label VARCHAR(100) NOT NULL DEFAULT '',
			FOREIGN KEY(scenario_id) REFERENCES scenario(id) ON DELETE CASCADE
		);

		-- Edge table
		CREATE TABLE edge (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			scenario_id VARCHAR(36) NOT NULL,
			from_node_id VARCHAR(36) NOT NULL,
			to_node_id VARCHAR(36) NOT NULL,
			FOREIGN KEY(scenario_id) REFERENCES scenario(id) ON DELETE CASCADE,
			FOREIGN KEY(from_node_id) REFERENCES node(id) ON DELETE CASCADE,
			FOREIGN KEY(to_node_id) REFERENCES node(id) ON DELETE CASCADE,
			CONSTRAINT unique_edge UNIQUE (from_node_id, to_node_id)
		);

		-- Holding table
		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			node_id VARCHAR(36) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			amount FLOAT NOT NULL,
			price FLOAT,
			asset_class VARCHAR(10) NOT NULL DEFAULT 'unknown',
			FOREIGN KEY(node_id) REFERENCES node(id) ON DELETE CASCADE,
			CONSTRAINT unique_node_ticker UNIQUE (node_id, ticker)
		);

		-- Action parameter table
		CREATE TABLE action_param (
			node_id VARCHAR(36) NOT NULL PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			payload TEXT NOT NULL,
			FOREIGN KEY(node_id) REFERENCES node(id) ON DELETE CASCADE
		);

		-- Setting table
		CREATE TABLE setting (
			key VARCHAR(50) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX idx_node_scenario ON node(scenario_id);
		CREATE INDEX idx_edge_scenario ON edge(scenario_id);
		CREATE INDEX idx_holding_node ON holding(node_id);
	`

	_, err := db.Exec(schema)
	return err
}
