// Package fingerprint computes deterministic identity hashes for bank
// transactions.
//
// Two formulas exist. Canonical is the one the store's uniqueness constraint
// is built on: it includes the balance after the transaction, because a
// single real-world transfer split into multiple postings is otherwise
// field-identical and only the running balance tells the postings apart.
// Canonical also lower-cases its input, so case and whitespace variants of
// the same transaction collapse into one.
//
// Strict is the older cross-file scanning formula: no balance, original
// casing preserved. It deliberately over-reports rather than letting a
// re-exported file with a shifted balance slip through, which makes it useful
// for eyeballing suspect exports but wrong for import-time dedup.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const separator = "||"

// Canonical returns the fingerprint enforced unique by the store. Empty and
// absent optional fields hash identically; amounts are fixed to two decimal
// places; the joined string is lower-cased and trimmed before hashing.
func Canonical(year, month, day int, name string, amount decimal.Decimal, code, remarks, counterAccount string, balanceAfter decimal.Decimal) string {
	components := []string{
		fmt.Sprintf("%04d%02d%02d", year, month, day),
		strings.TrimSpace(name),
		amount.StringFixed(2),
		strings.TrimSpace(code),
		strings.TrimSpace(remarks),
		strings.TrimSpace(counterAccount),
		balanceAfter.StringFixed(2),
	}
	joined := strings.TrimSpace(strings.ToLower(strings.Join(components, separator)))
	return digest(joined)
}

// Strict returns the cross-file scanning fingerprint: same fields as
// Canonical minus the balance, with original casing kept.
func Strict(year, month, day int, name string, amount decimal.Decimal, code, remarks, counterAccount string) string {
	components := []string{
		fmt.Sprintf("%04d%02d%02d", year, month, day),
		strings.TrimSpace(name),
		amount.StringFixed(2),
		strings.TrimSpace(code),
		strings.TrimSpace(remarks),
		strings.TrimSpace(counterAccount),
	}
	return digest(strings.Join(components, separator))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
