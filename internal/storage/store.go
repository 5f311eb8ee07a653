// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/fooddept/fdbms/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is the full set of records replaced by a backup restore.
type Snapshot struct {
	TransportBills []models.TransportBill
	Contracts      []models.Contract
	Users          []models.User
}

// Store defines the interface for bill and reference data storage.
// Listings return records in the order they were first stored.
type Store interface {
	// ListTransportBills returns every transportation bill.
	ListTransportBills(ctx context.Context) ([]models.TransportBill, error)

	// GetTransportBill returns the bill with the given ID or ErrNotFound.
	GetTransportBill(ctx context.Context, id string) (models.TransportBill, error)

	// SaveTransportBills inserts or replaces bills by ID in one
	// transaction.
	SaveTransportBills(ctx context.Context, bills ...models.TransportBill) error

	// ListGrindingBills returns every flour grinding bill.
	ListGrindingBills(ctx context.Context) ([]models.GrindingBill, error)

	// GetGrindingBill returns the bill with the given ID or ErrNotFound.
	GetGrindingBill(ctx context.Context, id string) (models.GrindingBill, error)

	// SaveGrindingBills inserts or replaces bills by ID in one
	// transaction.
	SaveGrindingBills(ctx context.Context, bills ...models.GrindingBill) error

	// ListContracts returns contracts ordered by ID.
	ListContracts(ctx context.Context) ([]models.Contract, error)

	// ReplaceContracts swaps the whole contract collection.
	ReplaceContracts(ctx context.Context, contracts []models.Contract) error

	// ListUsers returns every user account.
	ListUsers(ctx context.Context) ([]models.User, error)

	// ReplaceUsers swaps the whole user collection.
	ReplaceUsers(ctx context.Context, users []models.User) error

	// Restore replaces transportation bills, contracts and users together.
	Restore(ctx context.Context, snap Snapshot) error

	// GetSetting decodes the setting stored under key into v. It reports
	// false, leaving v untouched, when the key has never been set.
	GetSetting(ctx context.Context, key string, v any) (bool, error)

	// PutSetting stores v under key.
	PutSetting(ctx context.Context, key string, v any) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
