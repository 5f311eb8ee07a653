// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/fooddept/fdbms/internal/models"
	"github.com/fooddept/fdbms/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout makes concurrent writers wait for the file lock
	// instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const (
	transportTable = "transport_bills"
	grindingTable  = "grinding_bills"
)

// billRecord is the stored form of either bill kind. The bill itself is
// kept as JSON; the other columns are copies used for lookups.
type billRecord struct {
	id        string
	number    string
	party     string
	lifecycle models.Lifecycle
	body      []byte
}

func transportRecord(b models.TransportBill) (billRecord, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return billRecord{}, fmt.Errorf("failed to encode bill %s: %w", b.BillNumber, err)
	}
	return billRecord{id: b.ID, number: b.BillNumber, party: b.ContractorName, lifecycle: b.Lifecycle, body: body}, nil
}

func grindingRecord(b models.GrindingBill) (billRecord, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return billRecord{}, fmt.Errorf("failed to encode bill %s: %w", b.BillNumber, err)
	}
	return billRecord{id: b.ID, number: b.BillNumber, party: b.FlourMillName, lifecycle: b.Lifecycle, body: body}, nil
}

// ListTransportBills returns every transportation bill.
func (s *SQLiteStore) ListTransportBills(ctx context.Context) ([]models.TransportBill, error) {
	return listBills[models.TransportBill](ctx, s.db, transportTable)
}

// GetTransportBill retrieves a transportation bill by ID.
func (s *SQLiteStore) GetTransportBill(ctx context.Context, id string) (models.TransportBill, error) {
	return getBill[models.TransportBill](ctx, s.db, transportTable, id)
}

// SaveTransportBills upserts transportation bills.
func (s *SQLiteStore) SaveTransportBills(ctx context.Context, bills ...models.TransportBill) error {
	records := make([]billRecord, 0, len(bills))
	for _, b := range bills {
		rec, err := transportRecord(b)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return saveBills(ctx, tx, transportTable, records)
	})
}

// ListGrindingBills returns every flour grinding bill.
func (s *SQLiteStore) ListGrindingBills(ctx context.Context) ([]models.GrindingBill, error) {
	return listBills[models.GrindingBill](ctx, s.db, grindingTable)
}

// GetGrindingBill retrieves a flour grinding bill by ID.
func (s *SQLiteStore) GetGrindingBill(ctx context.Context, id string) (models.GrindingBill, error) {
	return getBill[models.GrindingBill](ctx, s.db, grindingTable, id)
}

// SaveGrindingBills upserts flour grinding bills.
func (s *SQLiteStore) SaveGrindingBills(ctx context.Context, bills ...models.GrindingBill) error {
	records := make([]billRecord, 0, len(bills))
	for _, b := range bills {
		rec, err := grindingRecord(b)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return saveBills(ctx, tx, grindingTable, records)
	})
}

// Restore replaces transportation bills, contracts and users in one
// transaction.
func (s *SQLiteStore) Restore(ctx context.Context, snap storage.Snapshot) error {
	records := make([]billRecord, 0, len(snap.TransportBills))
	for _, b := range snap.TransportBills {
		rec, err := transportRecord(b)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+transportTable); err != nil {
			return fmt.Errorf("failed to clear bills: %w", err)
		}
		if err := saveBills(ctx, tx, transportTable, records); err != nil {
			return err
		}
		if err := replaceContracts(ctx, tx, snap.Contracts); err != nil {
			return err
		}
		return replaceUsers(ctx, tx, snap.Users)
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func saveBills(ctx context.Context, tx *sql.Tx, table string, records []billRecord) error {
	query := `INSERT INTO ` + table + ` (id, bill_number, party, status, sent_at, processed_at, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bill_number = excluded.bill_number,
			party = excluded.party,
			status = excluded.status,
			sent_at = excluded.sent_at,
			processed_at = excluded.processed_at,
			body = excluded.body,
			updated_at = excluded.updated_at`

	now := time.Now().Unix()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, query,
			rec.id, rec.number, rec.party, string(rec.lifecycle.Current()),
			timestamp(rec.lifecycle.SentAt), timestamp(rec.lifecycle.ProcessedAt),
			string(rec.body), now,
		)
		if err != nil {
			return fmt.Errorf("failed to save bill %s: %w", rec.number, err)
		}
	}
	return nil
}

func listBills[T any](ctx context.Context, db *sql.DB, table string) ([]T, error) {
	rows, err := db.QueryContext(ctx, "SELECT body FROM "+table+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []T{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		var b T
		if err := json.Unmarshal([]byte(body), &b); err != nil {
			return nil, fmt.Errorf("failed to decode bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

func getBill[T any](ctx context.Context, db *sql.DB, table, id string) (T, error) {
	var b T
	var body string
	err := db.QueryRowContext(ctx, "SELECT body FROM "+table+" WHERE id = ?", id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("bill %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return b, fmt.Errorf("failed to get bill: %w", err)
	}
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return b, fmt.Errorf("failed to decode bill: %w", err)
	}
	return b, nil
}

// timestamp renders an optional time for a nullable TEXT column.
func timestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
