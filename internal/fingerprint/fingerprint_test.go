package fingerprint

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCanonical_Deterministic(t *testing.T) {
	a := Canonical(2024, 1, 15, "PLUS OOSTZAAN", dec("-42.50"), "BA", "Betaalautomaat", "", dec("1786.24"))
	b := Canonical(2024, 1, 15, "PLUS OOSTZAAN", dec("-42.50"), "BA", "Betaalautomaat", "", dec("1786.24"))
	assert.Equal(t, a, b)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
}

func TestCanonical_BalanceDisambiguatesSplitTransactions(t *testing.T) {
	// Same transfer posted twice with a different running balance must not
	// collapse into one fingerprint.
	a := Canonical(2024, 2, 20, "Huur februari", dec("-950.00"), "GT", "Huur appartement", "NL33ABNA0009998887", dec("2997.99"))
	b := Canonical(2024, 2, 20, "Huur februari", dec("-950.00"), "GT", "Huur appartement", "NL33ABNA0009998887", dec("2047.99"))
	assert.NotEqual(t, a, b)
}

func TestCanonical_CaseAndWhitespaceInsensitive(t *testing.T) {
	a := Canonical(2024, 1, 15, "Plus Oostzaan", dec("-42.50"), "ba", "betaalautomaat", "", dec("1786.24"))
	b := Canonical(2024, 1, 15, "  PLUS OOSTZAAN ", dec("-42.50"), "BA", " BETAALAUTOMAAT ", "", dec("1786.24"))
	assert.Equal(t, a, b)
}

func TestCanonical_FieldSensitivity(t *testing.T) {
	base := Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "", "", dec("100.00"))
	assert.NotEqual(t, base, Canonical(2024, 1, 16, "PLUS", dec("-42.50"), "BA", "", "", dec("100.00")))
	assert.NotEqual(t, base, Canonical(2024, 1, 15, "PLUS", dec("-42.51"), "BA", "", "", dec("100.00")))
	assert.NotEqual(t, base, Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "GT", "", "", dec("100.00")))
	assert.NotEqual(t, base, Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "x", "", dec("100.00")))
	assert.NotEqual(t, base, Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "", "NL11", dec("100.00")))
}

func TestCanonical_AmountFixedPrecision(t *testing.T) {
	// -42.5 and -42.50 are the same cent value and must hash identically
	a := Canonical(2024, 1, 15, "PLUS", dec("-42.5"), "BA", "", "", dec("100.0"))
	b := Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "", "", dec("100.00"))
	assert.Equal(t, a, b)
}

func TestStrict_IgnoresBalance(t *testing.T) {
	a := Strict(2024, 2, 20, "Huur februari", dec("-950.00"), "GT", "Huur", "NL33")
	b := Strict(2024, 2, 20, "Huur februari", dec("-950.00"), "GT", "Huur", "NL33")
	assert.Equal(t, a, b)
}

func TestStrict_CaseSensitive(t *testing.T) {
	a := Strict(2024, 1, 15, "PLUS OOSTZAAN", dec("-42.50"), "BA", "", "")
	b := Strict(2024, 1, 15, "Plus Oostzaan", dec("-42.50"), "BA", "", "")
	assert.NotEqual(t, a, b)
}

func TestStrict_DiffersFromCanonical(t *testing.T) {
	strict := Strict(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "", "")
	canonical := Canonical(2024, 1, 15, "PLUS", dec("-42.50"), "BA", "", "", dec("100.00"))
	assert.NotEqual(t, strict, canonical)
}
