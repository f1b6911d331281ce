// Package ledger turns raw account exports into a categorized, balanced
// ledger.
//
// A Builder ingests the rows of every account, keeping the rows accepted by
// the account's inclusion rules and categorizing each of them. Reconcile then
// derives the opening balance from the known statement balances, orders the
// transactions by date and computes the running balance. The aggregate
// functions (ByCategory, MonthlyNet, MonthlySpendingAverage) summarize the
// balanced entries for reporting.
//
// Example usage:
//
//	b := ledger.NewBuilder(categorizeFn)
//	if err := b.Ingest(ctx, "checking", rows, format); err != nil {
//	    return err
//	}
//
//	rec, err := ledger.Reconcile(ctx, statements, b.Transactions())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rec.Ending())
//
// All amounts use decimal arithmetic; outflows are negative, inflows positive.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single row of an account export.
type Transaction struct {
	Date        Date
	Amount      decimal.Decimal
	Account     string
	Description string
	// Category is empty for uncategorized transactions.
	Category string
	// Balance is the running balance after this transaction. It is only
	// set on entries returned by Reconcile.
	Balance decimal.Decimal
}

// IsUncategorized reports whether the transaction has no category.
func (t Transaction) IsUncategorized() bool {
	return t.Category == ""
}

// Date is a calendar date. It renders in ISO 8601 format (YYYY-MM-DD).
type Date struct {
	time.Time
}

// isoLayout is the layout transactions are normalized to.
const isoLayout = "2006-01-02"

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// MustParseDate is like ParseDate but panics on error. Use only in tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the ISO representation of the date.
func (d Date) String() string {
	return d.Format(isoLayout)
}

// MonthKey returns the YYYY-MM month the date falls in.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}
