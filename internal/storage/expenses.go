package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outlay/internal/core"
)

// expenseColumns is the shared select list; every scan goes through
// scanExpense so column order is defined in exactly one place.
const expenseColumns = `id, user_id, item, cost_cents, expense_date, category, description, payment_method, location, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		e       core.Expense
		cents   int64
		dateStr string
	)
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Item,
		&cents,
		&dateStr,
		&e.Category,
		&e.Description,
		&e.PaymentMethod,
		&e.Location,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Cost = core.Money{Cents: cents}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse stored expense date %q: %w", dateStr, err)
	}
	e.ExpenseDate = date
	return &e, nil
}

// CreateExpense persists a new expense owned by userID. The owner and both
// timestamps are assigned here; nothing in the draft can override them.
func (r *Repository) CreateExpense(ctx context.Context, userID int64, draft core.ExpenseDraft) (*core.Expense, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, item, cost_cents, expense_date, category, description, payment_method, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID,
		draft.Item,
		draft.Cost.Cents,
		draft.ExpenseDate.String(),
		draft.Category,
		draft.Description,
		draft.PaymentMethod,
		draft.Location,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("expense insert id: %w", err)
	}

	return &core.Expense{
		ID:            id,
		UserID:        userID,
		Item:          draft.Item,
		Cost:          draft.Cost,
		ExpenseDate:   draft.ExpenseDate,
		Category:      draft.Category,
		Description:   draft.Description,
		PaymentMethod: draft.PaymentMethod,
		Location:      draft.Location,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GetExpenseByID returns the record only when it exists AND is owned by
// userID. Both failure modes surface as core.ErrNotFound.
func (r *Repository) GetExpenseByID(ctx context.Context, userID, id int64) (*core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense overwrites the caller-editable fields of an owned expense.
// The ownership-checked fetch and the write run in one transaction so a
// concurrent mutation of the same id cannot interleave.
func (r *Repository) UpdateExpense(ctx context.Context, userID, id int64, draft core.ExpenseDraft) (*core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	existing, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch expense for update: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE expenses
		SET item = ?, cost_cents = ?, expense_date = ?, category = ?, description = ?, payment_method = ?, location = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		draft.Item,
		draft.Cost.Cents,
		draft.ExpenseDate.String(),
		draft.Category,
		draft.Description,
		draft.PaymentMethod,
		draft.Location,
		now,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return &core.Expense{
		ID:            existing.ID,
		UserID:        existing.UserID,
		Item:          draft.Item,
		Cost:          draft.Cost,
		ExpenseDate:   draft.ExpenseDate,
		Category:      draft.Category,
		Description:   draft.Description,
		PaymentMethod: draft.PaymentMethod,
		Location:      draft.Location,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now,
	}, nil
}

// DeleteExpense removes an owned expense outright; there is no soft delete.
// Same transactional fetch-then-act shape as UpdateExpense.
func (r *Repository) DeleteExpense(ctx context.Context, userID, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var owned int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM expenses WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&owned)
	if err == sql.ErrNoRows {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetch expense for delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, owned); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// orderByDate gives the contract ordering for every listing: most recent
// expense date first, insertion order breaking ties.
const orderByDate = ` ORDER BY expense_date DESC, id ASC`

func (r *Repository) listExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]core.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (r *Repository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ?`+orderByDate,
		userID)
}

func (r *Repository) ListExpensesByCategory(ctx context.Context, userID int64, category string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND category = ?`+orderByDate,
		userID, category)
}

func (r *Repository) ListExpensesByDateRange(ctx context.Context, userID int64, dateRange core.DateRange) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND expense_date BETWEEN ? AND ?`+orderByDate,
		userID, dateRange.Start.String(), dateRange.End.String())
}

func (r *Repository) ListExpensesByCostRange(ctx context.Context, userID int64, costRange core.CostRange) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND cost_cents BETWEEN ? AND ?`+orderByDate,
		userID, costRange.Min.Cents, costRange.Max.Cents)
}

func (r *Repository) ListExpensesByPaymentMethod(ctx context.Context, userID int64, paymentMethod string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND payment_method = ?`+orderByDate,
		userID, paymentMethod)
}

// SearchExpensesByItem matches a case-insensitive substring of the item
// name. instr avoids LIKE wildcard escaping.
func (r *Repository) SearchExpensesByItem(ctx context.Context, userID int64, substring string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND instr(lower(item), lower(?)) > 0`+orderByDate,
		userID, substring)
}

// TotalCents sums cost over all of a user's expenses. COALESCE turns the
// SQL NULL of an empty set into the contractual zero.
func (r *Repository) TotalCents(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_cents), 0) FROM expenses WHERE user_id = ?`,
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total cents: %w", err)
	}
	return total, nil
}

func (r *Repository) TotalCentsByDateRange(ctx context.Context, userID int64, dateRange core.DateRange) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_cents), 0) FROM expenses WHERE user_id = ? AND expense_date BETWEEN ? AND ?`,
		userID, dateRange.Start.String(), dateRange.End.String(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total cents by date range: %w", err)
	}
	return total, nil
}

func (r *Repository) TotalCentsByCategory(ctx context.Context, userID int64, category string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_cents), 0) FROM expenses WHERE user_id = ? AND category = ?`,
		userID, category,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total cents by category: %w", err)
	}
	return total, nil
}

func (r *Repository) distinctValues(ctx context.Context, query string, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("distinct values: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// DistinctCategories lists a user's non-empty categories. Ordering by value
// keeps the result stable within a call; no global order is promised.
func (r *Repository) DistinctCategories(ctx context.Context, userID int64) ([]string, error) {
	return r.distinctValues(ctx,
		`SELECT DISTINCT category FROM expenses WHERE user_id = ? AND category <> '' ORDER BY category`,
		userID)
}

func (r *Repository) DistinctPaymentMethods(ctx context.Context, userID int64) ([]string, error) {
	return r.distinctValues(ctx,
		`SELECT DISTINCT payment_method FROM expenses WHERE user_id = ? AND payment_method <> '' ORDER BY payment_method`,
		userID)
}
