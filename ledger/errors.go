package ledger

import (
	"errors"
	"fmt"
)

// ErrEmptyLedger is returned by Reconcile when there are no transactions: the
// opening balance cannot be dated without an earliest transaction.
var ErrEmptyLedger = errors.New("no transactions to reconcile")

// RowError is returned when a row of an account export cannot be turned into
// a transaction. Dirty rows are never skipped silently, since they would end
// up in the balances.
type RowError struct {
	Account string
	Row     int    // 1-based index of the row in the export
	Field   string // "date", "amount", "description" or "rule"
	Value   string
	Err     error
}

func (e *RowError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s row %d: invalid %s: %v", e.Account, e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("%s row %d: invalid %s %q: %v", e.Account, e.Row, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// GetAccount returns the account whose export contains the row.
func (e *RowError) GetAccount() string {
	return e.Account
}

// ColumnError is returned when a format refers to a column the row lacks.
type ColumnError struct {
	Column int
	Width  int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %d out of range (row has %d columns)", e.Column, e.Width)
}
