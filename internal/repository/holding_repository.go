package repository

import (
	"database/sql"
	"fmt"

	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/apperrors"
	"github.com/scenariodesk/Portfolio-Scenario-Backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// CreateHolding inserts a new holding row.
func (r *HoldingRepository) CreateHolding(h model.Holding) error {
	query := `
          INSERT INTO holding (id, node_id, ticker, amount, price, asset_class)
          VALUES (?, ?, ?, ?, ?, ?)
      `
	if _, err := r.db.Exec(query, h.ID, h.NodeID, h.Ticker, h.Amount, h.Price, h.AssetClass); err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// GetHoldingOnID retrieves a single holding by its ID.
func (r *HoldingRepository) GetHoldingOnID(holdingID string) (model.Holding, error) {
	query := `
          SELECT id, node_id, ticker, amount, price, asset_class
          FROM holding
          WHERE id = ?
      `
	var h model.Holding

	err := r.db.QueryRow(query, holdingID).Scan(
		&h.ID,
		&h.NodeID,
		&h.Ticker,
		&h.Amount,
		&h.Price,
		&h.AssetClass,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding: %w", err)
	}

	return h, nil
}

// GetHoldingsOnNodeID retrieves all holdings of a portfolio node in insertion order.
func (r *HoldingRepository) GetHoldingsOnNodeID(nodeID string) ([]model.Holding, error) {
	query := `
          SELECT id, node_id, ticker, amount, price, asset_class
          FROM holding
          WHERE node_id = ?
          ORDER BY rowid
      `
	rows, err := r.db.Query(query, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}

	for rows.Next() {
		var h model.Holding

		err := rows.Scan(
			&h.ID,
			&h.NodeID,
			&h.Ticker,
			&h.Amount,
			&h.Price,
			&h.AssetClass,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// UpdateHolding updates the mutable fields of a holding.
func (r *HoldingRepository) UpdateHolding(h model.Holding) error {
	query := `
          UPDATE holding
          SET ticker = ?, amount = ?, price = ?, asset_class = ?
          WHERE id = ?
      `
	result, err := r.db.Exec(query, h.Ticker, h.Amount, h.Price, h.AssetClass, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// DeleteHolding removes a holding.
func (r *HoldingRepository) DeleteHolding(holdingID string) error {
	result, err := r.db.Exec(`DELETE FROM holding WHERE id = ?`, holdingID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrHoldingNotFound
	}
	return nil
}

// GetDistinctTickers retrieves every distinct ticker held anywhere,
// excluding the cash sentinel whose price is fixed. Used by the bulk
// price refresh.
func (r *HoldingRepository) GetDistinctTickers() ([]string, error) {
	query := `
          SELECT DISTINCT ticker
          FROM holding
          WHERE ticker != 'USD'
          ORDER BY ticker
      `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}

	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

// UpdatePriceForTicker writes a refreshed market price to every holding
// of the given ticker.
func (r *HoldingRepository) UpdatePriceForTicker(ticker string, price float64, assetClass string) error {
	query := `
          UPDATE holding
          SET price = ?, asset_class = ?
          WHERE ticker = ?
      `
	if _, err := r.db.Exec(query, price, assetClass, ticker); err != nil {
		return fmt.Errorf("failed to update prices for ticker %s: %w", ticker, err)
	}
	return nil
}
