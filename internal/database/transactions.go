package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bankbooks/internal/models"
)

// InsertTransaction inserts t and returns the new row id. It takes a Querier
// so the import pipeline can run it inside its per-file transaction. A unique
// violation on the fingerprint column means the row is already stored; use
// IsUniqueViolation to detect it.
func InsertTransaction(q Querier, t *models.Transaction) (int64, error) {
	result, err := q.Exec(`
		INSERT INTO transactions (
			date, year, month, day, name, account, counter_account, code,
			amount, remarks, balance_after, category_id, fingerprint
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Date, t.Year, t.Month, t.Day, t.Name, t.Account, t.CounterAccount, t.Code,
		t.Amount.StringFixed(2), t.Remarks, t.BalanceAfter.StringFixed(2), t.CategoryID, t.Fingerprint)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return result.LastInsertId()
}

// TransactionExists reports whether a transaction with the fingerprint is
// already stored.
func TransactionExists(q Querier, fingerprint string) (bool, error) {
	var id int64
	err := q.QueryRow(`SELECT id FROM transactions WHERE fingerprint = ?`, fingerprint).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query fingerprint: %w", err)
	}
	return true, nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Search        string
	CategoryID    int64
	Uncategorized bool
	Year          int
	Month         int
	Limit         int
	Offset        int
}

const transactionColumns = `
	t.id, t.date, t.year, t.month, t.day, t.name, t.account, t.counter_account,
	t.code, t.amount, t.remarks, t.balance_after, t.category_id, t.fingerprint,
	t.created_at, COALESCE(c.name, '')`

// ListTransactions returns transactions matching the filter, newest first.
func (db *DB) ListTransactions(f TransactionFilter) ([]models.Transaction, error) {
	var conds []string
	var args []any

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		conds = append(conds, `(t.name LIKE ? OR t.remarks LIKE ? OR t.counter_account LIKE ? OR t.code LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if f.Uncategorized {
		conds = append(conds, `t.category_id IS NULL`)
	} else if f.CategoryID != 0 {
		conds = append(conds, `t.category_id = ?`)
		args = append(args, f.CategoryID)
	}
	if f.Year != 0 {
		conds = append(conds, `t.year = ?`)
		args = append(args, f.Year)
	}
	if f.Month != 0 {
		conds = append(conds, `t.month = ?`)
		args = append(args, f.Month)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var categoryID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Date, &t.Year, &t.Month, &t.Day, &t.Name, &t.Account,
			&t.CounterAccount, &t.Code, &t.Amount, &t.Remarks, &t.BalanceAfter,
			&categoryID, &t.Fingerprint, &t.CreatedAt, &t.CategoryName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if categoryID.Valid {
			t.CategoryID = &categoryID.Int64
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GetTransaction returns a single transaction by ID
func (db *DB) GetTransaction(id int64) (*models.Transaction, error) {
	var t models.Transaction
	var categoryID sql.NullInt64
	err := db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.id = ?
	`, id).Scan(&t.ID, &t.Date, &t.Year, &t.Month, &t.Day, &t.Name, &t.Account,
		&t.CounterAccount, &t.Code, &t.Amount, &t.Remarks, &t.BalanceAfter,
		&categoryID, &t.Fingerprint, &t.CreatedAt, &t.CategoryName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	return &t, nil
}

// ListUncategorized returns all transactions without a category, id and
// description only, for pattern scanning.
func (db *DB) ListUncategorized() ([]models.Transaction, error) {
	rows, err := db.Query(`
		SELECT id, name FROM transactions
		WHERE category_id IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query uncategorized: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan uncategorized: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// UncategorizedStats groups uncategorized transactions by description with
// count and average amount, most frequent first.
func (db *DB) UncategorizedStats() ([]models.DescriptionStat, error) {
	rows, err := db.Query(`
		SELECT name, COUNT(*), AVG(CAST(amount AS REAL))
		FROM transactions
		WHERE category_id IS NULL
		GROUP BY name
		ORDER BY COUNT(*) DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query uncategorized stats: %w", err)
	}
	defer rows.Close()

	var stats []models.DescriptionStat
	for rows.Next() {
		var s models.DescriptionStat
		var avg float64
		if err := rows.Scan(&s.Name, &s.Count, &avg); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		s.AvgAmount = decimal.NewFromFloat(avg).Round(2)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// AssignCategory sets category_id on the given transactions, skipping any
// that are already categorized. Returns the number of rows updated.
func (db *DB) AssignCategory(categoryID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, categoryID)
	for _, id := range ids {
		args = append(args, id)
	}
	result, err := db.Exec(`
		UPDATE transactions
		SET category_id = ?
		WHERE category_id IS NULL AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("assign category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// SetTransactionCategory sets or clears the category of one transaction.
// Unlike AssignCategory this overwrites an existing assignment; it backs the
// manual per-row edit.
func (db *DB) SetTransactionCategory(id int64, categoryID *int64) error {
	result, err := db.Exec(`UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("set transaction category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// CategorizationCounts returns how many transactions are uncategorized and
// categorized.
func (db *DB) CategorizationCounts() (uncategorized, categorized int, err error) {
	err = db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN category_id IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN category_id IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM transactions
	`).Scan(&uncategorized, &categorized)
	if err != nil {
		return 0, 0, fmt.Errorf("query categorization counts: %w", err)
	}
	return uncategorized, categorized, nil
}

// MonthlyCategoryTotals returns per-month, per-category sums for one year,
// using the stored year/month columns so no date parsing happens at query
// time. Uncategorized rows show up with a NULL category.
func (db *DB) MonthlyCategoryTotals(year int) ([]models.MonthlyCategoryTotal, error) {
	rows, err := db.Query(`
		SELECT t.year, t.month, t.category_id, COALESCE(c.name, ''),
			   COALESCE(SUM(CAST(t.amount AS REAL)), 0), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.year = ?
		GROUP BY t.month, t.category_id
		ORDER BY t.month, c.name
	`, year)
	if err != nil {
		return nil, fmt.Errorf("query monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []models.MonthlyCategoryTotal
	for rows.Next() {
		var m models.MonthlyCategoryTotal
		var categoryID sql.NullInt64
		var total float64
		if err := rows.Scan(&m.Year, &m.Month, &categoryID, &m.CategoryName, &total, &m.Count); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		if categoryID.Valid {
			m.CategoryID = &categoryID.Int64
		}
		m.Total = decimal.NewFromFloat(total).Round(2)
		totals = append(totals, m)
	}
	return totals, rows.Err()
}
