package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = `"Datum";"Naam / Omschrijving";"Rekening";"Tegenrekening";"Code";"Af Bij";"Bedrag (EUR)";"Mededelingen";"Saldo na mutatie"`

func testRow(date, name, amount, afBij, balance string) string {
	return `"` + date + `";"` + name + `";"NL11INGB0001234567";"";"BA";"` + afBij + `";"` + amount + `";"";"` + balance + `"`
}

func TestParseAll_SampleFile(t *testing.T) {
	f, err := os.Open("testdata/ing_sample.csv")
	require.NoError(t, err)
	defer f.Close()

	records, rowErrs, err := ParseAll(f, DefaultColumns())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 5)

	// First: PLUS debit, BOM already stripped from the header lookup
	first := records[0]
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, 15, first.Day)
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, "PLUS OOSTZAAN", first.Name)
	assert.Equal(t, "-42.50", first.Amount.StringFixed(2))
	assert.Equal(t, "1786.24", first.BalanceAfter.StringFixed(2))

	// Second: salary credit with counter account
	second := records[1]
	assert.Equal(t, "2250.00", second.Amount.StringFixed(2))
	assert.True(t, second.Amount.IsPositive())
	assert.Equal(t, "NL22RABO0007654321", second.CounterAccount)
	assert.Equal(t, "Salaris januari", second.Remarks)
}

func TestParseAll_DebitCreditSign(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		testRow("20240301", "KWIKFIT", "12,34", "Af", "100,00"),
		testRow("20240302", "REFUND KWIKFIT", "12,34", "Bij", "112,34"),
	}, "\n")

	records, rowErrs, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 2)
	assert.Equal(t, "-12.34", records[0].Amount.StringFixed(2))
	assert.Equal(t, "12.34", records[1].Amount.StringFixed(2))
}

func TestParseAll_RowIsolation(t *testing.T) {
	rows := []string{testHeader}
	for i := 0; i < 10; i++ {
		date := "2024010" + string(rune('1'+i))
		if i >= 9 {
			date = "20240110"
		}
		rows = append(rows, testRow(date, "SHOP", "1,00", "Af", "10,00"))
	}
	// Row 3 gets an invalid 7-digit date
	rows[3] = testRow("2024131", "SHOP", "1,00", "Af", "10,00")

	records, rowErrs, err := ParseAll(strings.NewReader(strings.Join(rows, "\n")), DefaultColumns())
	require.NoError(t, err)
	assert.Len(t, records, 9)
	require.Len(t, rowErrs, 1)
	assert.Equal(t, 3, rowErrs[0].Row)
	assert.Contains(t, rowErrs[0].Error(), "row 3")
	assert.Contains(t, rowErrs[0].Error(), "invalid date")
}

func TestParseAll_InvalidCalendarDate(t *testing.T) {
	data := testHeader + "\n" + testRow("20241301", "SHOP", "1,00", "Af", "10,00")
	records, rowErrs, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, rowErrs, 1)
	assert.Contains(t, rowErrs[0].Error(), "invalid date")
}

func TestParseAll_BadAmountAndBalance(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		testRow("20240301", "SHOP", "abc", "Af", "10,00"),
		testRow("20240302", "SHOP", "1,00", "Af", ""),
		testRow("20240303", "SHOP", "1,00", "Af", "9,00"),
	}, "\n")

	records, rowErrs, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	require.Len(t, rowErrs, 2)
	assert.Contains(t, rowErrs[0].Error(), "invalid amount")
	assert.Contains(t, rowErrs[1].Error(), "invalid balance")
}

func TestParseAll_MissingMandatoryColumn(t *testing.T) {
	data := `"Datum";"Naam / Omschrijving";"Rekening"` + "\n" + `"20240301";"SHOP";"NL11"`
	_, _, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestParseAll_EmptyFile(t *testing.T) {
	_, _, err := ParseAll(strings.NewReader(""), DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestParseAll_MissingName(t *testing.T) {
	data := testHeader + "\n" + testRow("20240301", "", "1,00", "Af", "10,00")
	records, rowErrs, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Empty(t, records)
	require.Len(t, rowErrs, 1)
}

func TestParseAll_OptionalColumnsDefaultEmpty(t *testing.T) {
	// Export without counter account and remarks columns at all
	data := `"Datum";"Naam / Omschrijving";"Rekening";"Code";"Af Bij";"Bedrag (EUR)";"Saldo na mutatie"` + "\n" +
		`"20240301";"SHOP";"NL11";"BA";"Af";"1,00";"10,00"`

	records, rowErrs, err := ParseAll(strings.NewReader(data), DefaultColumns())
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].CounterAccount)
	assert.Equal(t, "", records[0].Remarks)
}

func TestRowError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &RowError{Row: 7, Err: inner}
	assert.Equal(t, "row 7: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
