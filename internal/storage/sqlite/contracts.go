package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fooddept/fdbms/internal/models"
)

// ListContracts returns every contract ordered by contract ID.
func (s *SQLiteStore) ListContracts(ctx context.Context) ([]models.Contract, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contract_id, sanctioned_no, contractor_id, contractor_name, from_location,
		        to_location, rate_per_kg, effective_date, status
		 FROM contracts ORDER BY contract_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	contracts := []models.Contract{}
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(
			&c.ContractID,
			&c.SanctionedNo,
			&c.ContractorID,
			&c.ContractorName,
			&c.FromLocation,
			&c.ToLocation,
			&c.RatePerKg,
			&c.EffectiveDate,
			&c.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}
	return contracts, nil
}

// ReplaceContracts swaps the whole contract collection in one transaction.
func (s *SQLiteStore) ReplaceContracts(ctx context.Context, contracts []models.Contract) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceContracts(ctx, tx, contracts)
	})
}

func replaceContracts(ctx context.Context, tx *sql.Tx, contracts []models.Contract) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM contracts"); err != nil {
		return fmt.Errorf("failed to clear contracts: %w", err)
	}
	for _, c := range contracts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contracts (contract_id, sanctioned_no, contractor_id, contractor_name,
			                        from_location, to_location, rate_per_kg, effective_date, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ContractID, c.SanctionedNo, c.ContractorID, c.ContractorName,
			c.FromLocation, c.ToLocation, c.RatePerKg, c.EffectiveDate, c.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contract %d: %w", c.ContractID, err)
		}
	}
	return nil
}
