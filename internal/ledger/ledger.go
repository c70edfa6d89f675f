// Package ledger is the expense and settlement engine of a trip.
//
// The Engine turns requests from an acting user into validated, atomic writes
// against a storage.Store and computes balance sheets on demand. Every error it
// returns is an *apperr.Error: validation and authorization run before any
// write, and storage failures surface as an opaque persistence error.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/calculator"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/money"
	"github.com/mmynk/tripledger/internal/storage"
)

// Config holds the numeric rules of the ledger.
type Config struct {
	// Tolerance is the largest accepted gap between an expense amount and the
	// sum of its splits.
	Tolerance decimal.Decimal

	// BudgetWarningRatio is the share of the trip budget at which spend is
	// reported as a warning.
	BudgetWarningRatio decimal.Decimal
}

// DefaultConfig returns a one-cent tolerance and an 80% budget warning.
func DefaultConfig() Config {
	return Config{
		Tolerance:          money.DefaultTolerance,
		BudgetWarningRatio: calculator.DefaultBudgetWarningRatio,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the clock used for settledAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine implements the expense, settlement and balance operations.
type Engine struct {
	store    storage.Store
	metrics  *metrics.Ledger
	cfg      Config
	now      func() time.Time
	validate *validator.Validate
}

// New creates an Engine. m may be nil.
func New(store storage.Store, m *metrics.Ledger, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rejection reasons reported to metrics.
const (
	reasonField         = "invalid_field"
	reasonSplit         = "invalid_split"
	reasonAuthorization = "unauthorized"
)

// reject records a rejected request and returns err unchanged.
func (e *Engine) reject(reason string, err error) error {
	e.metrics.Rejected(reason)
	slog.Debug("Ledger request rejected", "reason", reason, "error", err)
	return err
}

// storeErr maps a storage error to the caller-facing taxonomy.
func storeErr(err error, format string, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	slog.Error("Storage operation failed", "error", err)
	return apperr.Persistence(err)
}

func (e *Engine) loadTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	trip, err := e.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, storeErr(err, "trip %s not found", tripID)
	}
	return trip, nil
}

func (e *Engine) isActive(ctx context.Context, tripID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	active, err := e.store.IsActiveParticipant(ctx, tripID, userID)
	if err != nil {
		return false, storeErr(err, "trip %s not found", tripID)
	}
	return active, nil
}

// requireParticipant fails with an authorization error unless actorID is
// active on the trip.
func (e *Engine) requireParticipant(ctx context.Context, tripID, actorID string) error {
	active, err := e.isActive(ctx, tripID, actorID)
	if err != nil {
		return err
	}
	if !active {
		return e.reject(reasonAuthorization,
			apperr.Authorization("user %s is not an active participant of this trip", actorID))
	}
	return nil
}

// requireEditor allows the expense payer or the trip owner.
func (e *Engine) requireEditor(trip *models.Trip, expense *models.Expense, actorID string) error {
	if actorID != "" && (actorID == expense.PayerID || actorID == trip.OwnerID) {
		return nil
	}
	return e.reject(reasonAuthorization,
		apperr.Authorization("only the payer or the trip owner can modify expense %s", expense.ID))
}

func (e *Engine) allocOptions() calculator.Options {
	return calculator.Options{Tolerance: e.cfg.Tolerance}
}
