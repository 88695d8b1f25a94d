// Command dupecheck scans a statement export for duplicate rows without
// touching any database. It uses the strict fingerprint (no balance, original
// casing), which over-reports against the import pipeline on purpose: rows it
// flags may still import as distinct split transactions.
package main

import (
	"flag"
	"fmt"
	"os"

	"bankbooks/internal/fingerprint"
	"bankbooks/internal/parser"
)

func main() {
	file := flag.String("file", "", "statement CSV file to scan")
	verbose := flag.Bool("verbose", false, "print full details per duplicate")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: dupecheck -file statement.csv")
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	records, rowErrs, err := parser.ParseAll(f, parser.DefaultColumns())
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse: %v\n", err)
		os.Exit(1)
	}
	for _, rowErr := range rowErrs {
		fmt.Fprintf(os.Stderr, "skipped %v\n", rowErr)
	}

	seen := make(map[string]int) // fingerprint -> first row
	duplicates := 0
	for i, rec := range records {
		row := i + 1
		hash := fingerprint.Strict(rec.Year, rec.Month, rec.Day, rec.Name,
			rec.Amount, rec.Code, rec.Remarks, rec.CounterAccount)

		first, ok := seen[hash]
		if !ok {
			seen[hash] = row
			continue
		}

		duplicates++
		fmt.Printf("row %4d duplicates row %4d\n", row, first)
		if *verbose {
			fmt.Printf("    date:    %s\n", rec.Date)
			fmt.Printf("    name:    %s\n", rec.Name)
			fmt.Printf("    amount:  %s\n", rec.Amount.StringFixed(2))
			fmt.Printf("    remarks: %s\n", rec.Remarks)
			fmt.Printf("    hash:    %s\n", hash)
		}
	}

	if duplicates == 0 {
		fmt.Printf("no duplicates in %d rows\n", len(records))
		return
	}
	fmt.Printf("%d duplicate rows in %d rows\n", duplicates, len(records))
}
