package importer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankbooks/internal/database"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Init())
	return db
}

const testHeader = `"Datum";"Naam / Omschrijving";"Rekening";"Tegenrekening";"Code";"Af Bij";"Bedrag (EUR)";"Mededelingen";"Saldo na mutatie"`

func testRow(date, name, amount, balance string) string {
	return `"` + date + `";"` + name + `";"NL11INGB0001234567";"";"BA";"Af";"` + amount + `";"";"` + balance + `"`
}

func statement(rows ...string) string {
	return strings.Join(append([]string{testHeader}, rows...), "\n")
}

func TestImport_Idempotent(t *testing.T) {
	db := testDB(t)
	imp := New(db)
	data := statement(
		testRow("20240101", "PLUS OOSTZAAN", "10,00", "100,00"),
		testRow("20240102", "SHELL STATION", "20,00", "80,00"),
		testRow("20240103", "ALBERT HEIJN", "30,00", "50,00"),
	)

	first := imp.Import(context.Background(), strings.NewReader(data))
	assert.Equal(t, 3, first.Imported)
	assert.Equal(t, 0, first.Duplicates)
	assert.Equal(t, 0, first.Errors)

	second := imp.Import(context.Background(), strings.NewReader(data))
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 3, second.Duplicates)
	assert.Equal(t, 0, second.Errors)
}

func TestImport_RowIsolation(t *testing.T) {
	db := testDB(t)
	imp := New(db)

	rows := []string{
		testRow("20240101", "SHOP 1", "1,00", "99,00"),
		testRow("20240102", "SHOP 2", "1,00", "98,00"),
		testRow("2024131", "SHOP 3", "1,00", "97,00"), // bad date, 7 digits
		testRow("20240104", "SHOP 4", "1,00", "96,00"),
		testRow("20240105", "SHOP 5", "1,00", "95,00"),
		testRow("20240106", "SHOP 6", "1,00", "94,00"),
		testRow("20240107", "SHOP 7", "1,00", "93,00"),
		testRow("20240108", "SHOP 8", "1,00", "92,00"),
		testRow("20240109", "SHOP 9", "1,00", "91,00"),
		testRow("20240110", "SHOP 10", "1,00", "90,00"),
	}

	result := imp.Import(context.Background(), strings.NewReader(statement(rows...)))
	assert.Equal(t, 9, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorDetails, 1)
	assert.Contains(t, result.ErrorDetails[0], "row 3")
}

func TestImport_SplitTransactions(t *testing.T) {
	// Two postings of the same transfer, identical in every field except the
	// running balance: both must import.
	db := testDB(t)
	imp := New(db)

	result := imp.ImportFile(context.Background(), "testdata/split_transactions.csv")
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 0, result.Errors)
}

func TestImport_DuplicateWithinFile(t *testing.T) {
	db := testDB(t)
	imp := New(db)
	row := testRow("20240101", "PLUS OOSTZAAN", "10,00", "100,00")

	result := imp.Import(context.Background(), strings.NewReader(statement(row, row)))
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Errors)
}

func TestImport_CaseVariantIsDuplicate(t *testing.T) {
	db := testDB(t)
	imp := New(db)

	first := imp.Import(context.Background(), strings.NewReader(statement(
		testRow("20240101", "PLUS OOSTZAAN", "10,00", "100,00"),
	)))
	require.Equal(t, 1, first.Imported)

	second := imp.Import(context.Background(), strings.NewReader(statement(
		testRow("20240101", "Plus Oostzaan", "10,00", "100,00"),
	)))
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Duplicates)
}

func TestImport_StoredFields(t *testing.T) {
	db := testDB(t)
	imp := New(db)

	result := imp.Import(context.Background(), strings.NewReader(statement(
		testRow("20240115", "PLUS OOSTZAAN", "42,50", "1786,24"),
	)))
	require.Equal(t, 1, result.Imported)

	stored, err := db.ListTransactions(database.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	txn := stored[0]
	assert.Equal(t, "2024-01-15", txn.Date)
	assert.Equal(t, 2024, txn.Year)
	assert.Equal(t, 1, txn.Month)
	assert.Equal(t, 15, txn.Day)
	assert.Equal(t, "PLUS OOSTZAAN", txn.Name)
	assert.Equal(t, "-42.50", txn.Amount.StringFixed(2))
	assert.Equal(t, "1786.24", txn.BalanceAfter.StringFixed(2))
	assert.Nil(t, txn.CategoryID)
	assert.Len(t, txn.Fingerprint, 64)
}

func TestImportFile_Unreadable(t *testing.T) {
	db := testDB(t)
	imp := New(db)

	result := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorDetails, 1)
	assert.Contains(t, result.ErrorDetails[0], "file error")
}

func TestImport_MissingHeaderColumn(t *testing.T) {
	db := testDB(t)
	imp := New(db)

	result := imp.Import(context.Background(), strings.NewReader(`"Datum";"Code"`+"\n"+`"20240101";"BA"`))
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Errors)

	// Nothing committed
	stored, err := db.ListTransactions(database.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}
