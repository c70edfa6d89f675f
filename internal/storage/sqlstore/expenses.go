package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

const expenseColumns = `id, trip_id, payer_id, activity_id, amount, currency, category, description, expense_date, created_at, updated_at`

// CreateExpense persists a new expense and its splits in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit) ([]models.ExpenseSplit, error) {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now()
	}
	expense.UpdatedAt = expense.CreatedAt

	var saved []models.ExpenseSplit
	err := s.inTx(ctx, nil, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.TripID, expense.PayerID, nullString(expense.ActivityID),
			expense.Amount, expense.Currency, string(expense.Category), nullString(expense.Description),
			expense.ExpenseDate, expense.CreatedAt.UnixMilli(), expense.UpdatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		saved, err = s.insertSplits(ctx, tx, expense.ID, splits)
		return err
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// GetExpense retrieves an expense by ID.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpensesByTrip retrieves all expenses for a trip, newest first.
func (s *Store) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	return s.listExpenses(ctx, s.db, tripID)
}

func (s *Store) listExpenses(ctx context.Context, q querier, tripID string) ([]*models.Expense, error) {
	rows, err := s.query(ctx, q,
		`SELECT `+expenseColumns+` FROM expenses WHERE trip_id = ? ORDER BY expense_date DESC, created_at DESC, id`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by trip: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpense writes the mutable columns and optionally replaces every split.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense, splits []models.ExpenseSplit, replaceSplits bool) ([]models.ExpenseSplit, error) {
	expense.UpdatedAt = now()

	var current []models.ExpenseSplit
	err := s.inTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx,
			`UPDATE expenses
			 SET activity_id = ?, amount = ?, currency = ?, category = ?, description = ?, expense_date = ?, updated_at = ?
			 WHERE id = ?`,
			nullString(expense.ActivityID), expense.Amount, expense.Currency, string(expense.Category),
			nullString(expense.Description), expense.ExpenseDate, expense.UpdatedAt.UnixMilli(),
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}

		if !replaceSplits {
			current, err = s.listSplits(ctx, tx, expense.ID)
			return err
		}

		// Full replace: splits have no identity across an edit.
		if _, err := s.exec(ctx, tx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}
		current, err = s.insertSplits(ctx, tx, expense.ID, splits)
		return err
	})
	if err != nil {
		return nil, err
	}

	return current, nil
}

// DeleteExpense removes an expense and its splits.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	return s.inTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
			return fmt.Errorf("failed to delete splits: %w", err)
		}

		res, err := s.exec(ctx, tx, "DELETE FROM expenses WHERE id = ?", expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		return nil
	})
}

// LoadTripLedger reads a trip's expenses and splits inside one transaction so
// a concurrent split replacement is seen entirely or not at all.
func (s *Store) LoadTripLedger(ctx context.Context, tripID string) ([]*models.Expense, []models.ExpenseSplit, error) {
	var (
		expenses []*models.Expense
		splits   []models.ExpenseSplit
	)

	err := s.inTx(ctx, s.dialect.snapshot, func(tx *sql.Tx) error {
		var err error
		expenses, err = s.listExpenses(ctx, tx, tripID)
		if err != nil {
			return err
		}

		rows, err := s.query(ctx, tx,
			`SELECT `+splitColumnsQualified+`
			 FROM expense_splits s
			 JOIN expenses e ON s.expense_id = e.id
			 WHERE e.trip_id = ?
			 ORDER BY s.expense_id, s.position`,
			tripID,
		)
		if err != nil {
			return fmt.Errorf("failed to list splits by trip: %w", err)
		}
		defer rows.Close()

		splits, err = collectSplits(rows)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return expenses, splits, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	var (
		expense     models.Expense
		activityID  sql.NullString
		category    string
		description sql.NullString
		createdAt   int64
		updatedAt   int64
	)

	if err := row.Scan(&expense.ID, &expense.TripID, &expense.PayerID, &activityID,
		&expense.Amount, &expense.Currency, &category, &description,
		&expense.ExpenseDate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	expense.ActivityID = activityID.String
	expense.Category = models.Category(category)
	expense.Description = description.String
	expense.CreatedAt = fromMillis(createdAt)
	expense.UpdatedAt = fromMillis(updatedAt)
	return &expense, nil
}
