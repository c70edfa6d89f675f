// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/tripledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// TripDirectory answers membership questions about trips. Trips and their
// collaborators are owned by the surrounding planner; the ledger only reads them.
type TripDirectory interface {
	// GetTrip returns the trip or an error wrapping ErrNotFound.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// IsActiveParticipant reports whether userID is the owner or an accepted collaborator.
	IsActiveParticipant(ctx context.Context, tripID, userID string) (bool, error)

	// ListActiveParticipants returns the owner first, then accepted collaborators
	// in the order they joined.
	ListActiveParticipants(ctx context.Context, tripID string) ([]string, error)
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
//
// Every method that writes more than one row does so in a single transaction:
// either all rows commit or none are visible.
type Store interface {
	TripDirectory

	// CreateExpense inserts the expense and all splits atomically.
	// ID and timestamp fields are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) ([]models.ExpenseSplit, error)

	// GetExpense retrieves an expense by ID or returns an error wrapping ErrNotFound.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByTrip returns the trip's expenses, newest expense date first.
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)

	// UpdateExpense writes the expense's mutable columns. When replaceSplits is
	// true every existing split is deleted and splits are inserted in the same
	// transaction; the new set is returned.
	UpdateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit, replaceSplits bool) ([]models.ExpenseSplit, error)

	// DeleteExpense removes the expense and every split it owns.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListSplitsByExpense returns the expense's splits in insertion order.
	ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error)

	// GetSplit retrieves a split by ID or returns an error wrapping ErrNotFound.
	GetSplit(ctx context.Context, splitID string) (*models.ExpenseSplit, error)

	// SetSplitSettled updates one split's settled flag and timestamp in a
	// single-row write. settledAt must be nil when settled is false.
	SetSplitSettled(ctx context.Context, splitID string, settled bool, settledAt *time.Time) (*models.ExpenseSplit, error)

	// LoadTripLedger reads every expense and split of a trip from one
	// consistent snapshot.
	LoadTripLedger(ctx context.Context, tripID string) ([]*models.Expense, []models.ExpenseSplit, error)

	// Close releases any resources held by the store.
	Close() error
}
