package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

const (
	splitColumns          = `id, expense_id, user_id, amount, percentage, settled, settled_at`
	splitColumnsQualified = `s.id, s.expense_id, s.user_id, s.amount, s.percentage, s.settled, s.settled_at`
)

// insertSplits inserts splits for expenseID inside tx, assigning fresh IDs.
func (s *Store) insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []models.ExpenseSplit) ([]models.ExpenseSplit, error) {
	saved := make([]models.ExpenseSplit, len(splits))
	for i, split := range splits {
		split.ID = uuid.New().String()
		split.ExpenseID = expenseID

		_, err := s.exec(ctx, tx,
			`INSERT INTO expense_splits (id, expense_id, position, user_id, amount, percentage, settled, settled_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			split.ID, expenseID, i, split.UserID, split.Amount, nullDecimal(split.Percentage),
			split.Settled, nullMillis(split.SettledAt),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert split: %w", err)
		}
		saved[i] = split
	}
	return saved, nil
}

// ListSplitsByExpense retrieves all splits for an expense.
func (s *Store) ListSplitsByExpense(ctx context.Context, expenseID string) ([]models.ExpenseSplit, error) {
	return s.listSplits(ctx, s.db, expenseID)
}

func (s *Store) listSplits(ctx context.Context, q querier, expenseID string) ([]models.ExpenseSplit, error) {
	rows, err := s.query(ctx, q,
		`SELECT `+splitColumns+` FROM expense_splits WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	return collectSplits(rows)
}

// GetSplit retrieves a split by ID.
func (s *Store) GetSplit(ctx context.Context, splitID string) (*models.ExpenseSplit, error) {
	row := s.queryRow(ctx, s.db, `SELECT `+splitColumns+` FROM expense_splits WHERE id = ?`, splitID)

	split, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// SetSplitSettled flips one split's settled state in a single statement.
func (s *Store) SetSplitSettled(ctx context.Context, splitID string, settled bool, settledAt *time.Time) (*models.ExpenseSplit, error) {
	row := s.queryRow(ctx, s.db,
		`UPDATE expense_splits SET settled = ?, settled_at = ? WHERE id = ? RETURNING `+splitColumns,
		settled, nullMillis(settledAt), splitID,
	)

	split, err := scanSplit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update split settlement: %w", err)
	}
	return split, nil
}

func collectSplits(rows *sql.Rows) ([]models.ExpenseSplit, error) {
	var splits []models.ExpenseSplit
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, *split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

func scanSplit(row scanner) (*models.ExpenseSplit, error) {
	var (
		split      models.ExpenseSplit
		percentage decimal.NullDecimal
		settledAt  sql.NullInt64
	)

	if err := row.Scan(&split.ID, &split.ExpenseID, &split.UserID, &split.Amount,
		&percentage, &split.Settled, &settledAt); err != nil {
		return nil, err
	}

	if percentage.Valid {
		p := percentage.Decimal
		split.Percentage = &p
	}
	if settledAt.Valid {
		t := fromMillis(settledAt.Int64)
		split.SettledAt = &t
	}
	return &split, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
