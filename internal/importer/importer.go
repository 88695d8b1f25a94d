// Package importer runs the statement import pipeline: parse each row,
// fingerprint it, check the store for a duplicate, insert if new. All inserts
// of one file commit as a single database transaction, so a failed import
// never leaves the store half-written.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"bankbooks/internal/database"
	"bankbooks/internal/fingerprint"
	"bankbooks/internal/models"
	"bankbooks/internal/parser"
)

type Importer struct {
	db   *database.DB
	cols parser.Columns
}

// New creates an Importer using the default ING column layout.
func New(db *database.DB) *Importer {
	return &Importer{db: db, cols: parser.DefaultColumns()}
}

// NewWithColumns creates an Importer for a custom column layout.
func NewWithColumns(db *database.DB, cols parser.Columns) *Importer {
	return &Importer{db: db, cols: cols}
}

// ImportFile imports the statement file at path. An unreadable file yields a
// zero-progress result carrying one error entry; it is not escalated as a Go
// error.
func (im *Importer) ImportFile(ctx context.Context, path string) *models.ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return fileErrorResult(err)
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads one statement from r and applies it to the store.
//
// Row-level parse failures are counted and reported, never fatal. A
// fingerprint already present in the store counts as a duplicate and leaves
// the stored row untouched. Two concurrent imports of overlapping data race
// on the insert; the loser's unique-constraint violation is also counted as
// a duplicate. Only store or reader breakage aborts the batch, and even then
// the result is structural: the transaction rolls back and the result
// reports zero progress plus one error entry.
func (im *Importer) Import(ctx context.Context, r io.Reader) *models.ImportResult {
	result := &models.ImportResult{}

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return fileErrorResult(err)
	}
	defer tx.Rollback()

	p := parser.New(r, im.cols)
	for {
		rec, err := p.Next()
		if err == io.EOF {
			break
		}
		var rowErr *parser.RowError
		if errors.As(err, &rowErr) {
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, rowErr.Error())
			continue
		}
		if err != nil {
			// Header missing, reader breakage: nothing gets committed.
			return fileErrorResult(err)
		}

		hash := fingerprint.Canonical(rec.Year, rec.Month, rec.Day, rec.Name,
			rec.Amount, rec.Code, rec.Remarks, rec.CounterAccount, rec.BalanceAfter)

		exists, err := database.TransactionExists(tx, hash)
		if err != nil {
			return fileErrorResult(err)
		}
		if exists {
			result.Duplicates++
			continue
		}

		txn := &models.Transaction{
			Date:           rec.Date,
			Year:           rec.Year,
			Month:          rec.Month,
			Day:            rec.Day,
			Name:           rec.Name,
			Account:        rec.Account,
			CounterAccount: rec.CounterAccount,
			Code:           rec.Code,
			Amount:         rec.Amount,
			Remarks:        rec.Remarks,
			BalanceAfter:   rec.BalanceAfter,
			Fingerprint:    hash,
		}
		if _, err := database.InsertTransaction(tx, txn); err != nil {
			if database.IsUniqueViolation(err) {
				// Lost the race against a concurrent import.
				result.Duplicates++
				continue
			}
			return fileErrorResult(err)
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return fileErrorResult(err)
	}
	return result
}

func fileErrorResult(err error) *models.ImportResult {
	return &models.ImportResult{
		Errors:       1,
		ErrorDetails: []string{fmt.Sprintf("file error: %v", err)},
	}
}
