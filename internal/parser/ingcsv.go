package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Columns maps the parser's logical fields to the header names of the
// statement export. The business logic below never touches header strings
// directly, so a different export dialect only needs a different Columns
// value.
type Columns struct {
	Date           string
	Name           string
	Account        string
	CounterAccount string
	Code           string
	DebitCredit    string
	Amount         string
	Remarks        string
	BalanceAfter   string
	// DebitMarker is the DebitCredit value that means money out.
	DebitMarker string
}

// DefaultColumns returns the column names of an ING checking account export.
func DefaultColumns() Columns {
	return Columns{
		Date:           "Datum",
		Name:           "Naam / Omschrijving",
		Account:        "Rekening",
		CounterAccount: "Tegenrekening",
		Code:           "Code",
		DebitCredit:    "Af Bij",
		Amount:         "Bedrag (EUR)",
		Remarks:        "Mededelingen",
		BalanceAfter:   "Saldo na mutatie",
		DebitMarker:    "Af",
	}
}

// Record is one normalized statement line. Optional text fields are empty
// strings, never absent, so downstream hashing sees uniform input.
type Record struct {
	Year           int
	Month          int
	Day            int
	Date           string // YYYY-MM-DD
	Name           string
	Account        string
	CounterAccount string
	Code           string
	Remarks        string
	Amount         decimal.Decimal // negative for debits
	BalanceAfter   decimal.Decimal
}

// RowError is a recoverable per-row parse failure. The row number is 1-based
// over data rows, matching how users count lines below the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Parser reads a semicolon-delimited statement export row by row. The first
// line must be a header; an optional UTF-8 byte-order mark is stripped.
type Parser struct {
	cols   Columns
	reader *csv.Reader
	index  map[string]int
	row    int
}

// New creates a Parser over r. The header is read lazily on the first call
// to Next.
func New(r io.Reader, cols Columns) *Parser {
	cr := csv.NewReader(stripBOM(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	return &Parser{cols: cols, reader: cr}
}

// stripBOM removes a leading UTF-8 byte-order mark if present.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	lead, err := br.Peek(3)
	if err == nil && bytes.Equal(lead, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	return br
}

// readHeader reads the header row and checks that every mandatory column is
// present. Counter account and remarks are optional.
func (p *Parser) readHeader() error {
	header, err := p.reader.Read()
	if err == io.EOF {
		return errors.New("empty file: missing header row")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	p.index = make(map[string]int, len(header))
	for i, name := range header {
		p.index[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{
		p.cols.Date, p.cols.Name, p.cols.Account, p.cols.Code,
		p.cols.DebitCredit, p.cols.Amount, p.cols.BalanceAfter,
	} {
		if _, ok := p.index[required]; !ok {
			return fmt.Errorf("missing column %q in header", required)
		}
	}
	return nil
}

// Next returns the next record. Per-row failures come back as *RowError and
// leave the parser usable for the following rows; io.EOF signals the end of
// the file. Any other error is file-level.
func (p *Parser) Next() (*Record, error) {
	if p.index == nil {
		if err := p.readHeader(); err != nil {
			return nil, err
		}
	}

	raw, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}
	p.row++

	rec, err := p.parseRow(raw)
	if err != nil {
		return nil, &RowError{Row: p.row, Err: err}
	}
	return rec, nil
}

func (p *Parser) parseRow(raw []string) (*Record, error) {
	field := func(column string) string {
		i, ok := p.index[column]
		if !ok || i >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[i])
	}

	var rec Record

	dateStr := field(p.cols.Date)
	if len(dateStr) != 8 {
		return nil, fmt.Errorf("invalid date %q: want 8 digits YYYYMMDD", dateStr)
	}
	date, err := time.Parse("20060102", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", dateStr)
	}
	rec.Year = date.Year()
	rec.Month = int(date.Month())
	rec.Day = date.Day()
	rec.Date = date.Format("2006-01-02")

	rec.Name = field(p.cols.Name)
	if rec.Name == "" {
		return nil, fmt.Errorf("missing %s", p.cols.Name)
	}
	rec.Account = field(p.cols.Account)
	rec.CounterAccount = field(p.cols.CounterAccount)
	rec.Code = field(p.cols.Code)
	rec.Remarks = field(p.cols.Remarks)

	rec.Amount, err = parseDecimal(field(p.cols.Amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if field(p.cols.DebitCredit) == p.cols.DebitMarker {
		rec.Amount = rec.Amount.Neg()
	}

	rec.BalanceAfter, err = parseDecimal(field(p.cols.BalanceAfter))
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	return &rec, nil
}

// parseDecimal parses a comma-decimal amount like "1786,24".
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, errors.New("empty value")
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return d, nil
}

// ParseAll reads every row of r, collecting successfully parsed records and
// row-level errors side by side. A file-level failure (unreadable header,
// malformed delimiter structure) is returned as err.
func ParseAll(r io.Reader, cols Columns) ([]Record, []*RowError, error) {
	p := New(r, cols)
	var records []Record
	var rowErrs []*RowError
	for {
		rec, err := p.Next()
		if err == io.EOF {
			return records, rowErrs, nil
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			rowErrs = append(rowErrs, rowErr)
			continue
		}
		if err != nil {
			return records, rowErrs, err
		}
		records = append(records, *rec)
	}
}
