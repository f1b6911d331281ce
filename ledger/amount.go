package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFormat describes how amounts are written in account exports and
// statement balances.
type NumberFormat struct {
	// Grouping separates thousands, e.g. "," in 1,234.56. May be empty.
	Grouping string
	// Decimal separates the fraction, e.g. "." in 1,234.56.
	Decimal string
	// Symbol is a currency symbol stripped before parsing, e.g. "$".
	Symbol string
}

// DefaultNumberFormat is the en_US format: 1,234.56 with a "$" symbol.
func DefaultNumberFormat() NumberFormat {
	return NumberFormat{Grouping: ",", Decimal: ".", Symbol: "$"}
}

// Validate checks that the separators can be told apart.
func (f NumberFormat) Validate() error {
	if f.Decimal == "" {
		return fmt.Errorf("decimal separator must not be empty")
	}
	if f.Grouping == f.Decimal {
		return fmt.Errorf("grouping and decimal separators are both %q", f.Decimal)
	}
	return nil
}

// Parse converts s to a decimal, honouring the grouping and decimal separators
// and ignoring the currency symbol and surrounding whitespace.
func (f NumberFormat) Parse(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	if f.Symbol != "" {
		v = strings.ReplaceAll(v, f.Symbol, "")
	}
	if f.Grouping != "" {
		v = strings.ReplaceAll(v, f.Grouping, "")
	}
	if f.Decimal != "." {
		v = strings.ReplaceAll(v, f.Decimal, ".")
	}
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "+")

	if v == "" {
		return decimal.Zero, fmt.Errorf("invalid amount %q: empty", s)
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is like Parse but panics on error. Use only in tests.
func (f NumberFormat) MustParse(s string) decimal.Decimal {
	d, err := f.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum adds up the amounts of txns.
func Sum(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}
