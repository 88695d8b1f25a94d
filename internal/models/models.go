package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one imported bank statement line. Rows are created only by
// the import pipeline; after that the only mutable field is CategoryID.
type Transaction struct {
	ID             int64           `json:"id"`
	Date           string          `json:"date"` // YYYY-MM-DD
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Day            int             `json:"day"`
	Name           string          `json:"name"`
	Account        string          `json:"account"`
	CounterAccount string          `json:"counter_account"`
	Code           string          `json:"code"`
	Amount         decimal.Decimal `json:"amount"` // negative for debits
	Remarks        string          `json:"remarks"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	CategoryID     *int64          `json:"category_id"`
	CategoryName   string          `json:"category_name,omitempty"` // joined for display, not stored
	Fingerprint    string          `json:"fingerprint"`
	CreatedAt      time.Time       `json:"created_at"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	// TransactionCount is filled by list queries, not stored.
	TransactionCount int `json:"transaction_count"`
}

// ImportResult aggregates the outcome of importing one statement file.
type ImportResult struct {
	Imported     int      `json:"imported"`
	Duplicates   int      `json:"duplicates"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
}

// DescriptionStat summarizes the uncategorized transactions sharing one
// description.
type DescriptionStat struct {
	Name      string          `json:"name"`
	Count     int             `json:"count"`
	AvgAmount decimal.Decimal `json:"avg_amount"`
}

// MonthlyCategoryTotal is one cell of the month-by-category report.
type MonthlyCategoryTotal struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

type Job struct {
	ID          int64      `json:"id"`
	JobType     string     `json:"job_type"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"` // pending, running, completed, failed
	Progress    int        `json:"progress"`
	Result      string     `json:"result"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
