package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/mymoney/telemetry"
)

const (
	// OpeningAccount is the pseudo-account of the synthetic opening entry,
	// which stands for all accounts together.
	OpeningAccount = "all-together"
	// OpeningDescription describes the synthetic opening entry.
	OpeningDescription = "opening balance"
)

// Reconciliation is a balanced ledger.
type Reconciliation struct {
	// Opening is the synthetic entry dated the day before the earliest
	// transaction. It seeds the running balance and is not part of Entries.
	Opening Transaction
	// Entries are the real transactions in date order, with Balance set.
	Entries []Transaction
	// StatementTotal is the sum of the statement ending balances.
	StatementTotal decimal.Decimal
	// ActivityTotal is the sum of all transaction amounts.
	ActivityTotal decimal.Decimal
}

// Ending returns the running balance after the last transaction. It equals
// StatementTotal.
func (r *Reconciliation) Ending() decimal.Decimal {
	if len(r.Entries) == 0 {
		return r.Opening.Balance
	}
	return r.Entries[len(r.Entries)-1].Balance
}

// Reconcile balances txns against the statement ending balances. The
// transactions are assumed to be the complete activity since the opening
// date, so the opening balance is the statement total minus the activity
// total. Transactions on the same date keep their relative order. txns is
// not modified.
func Reconcile(ctx context.Context, statements map[string]decimal.Decimal, txns []Transaction) (*Reconciliation, error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("reconcile (%d transactions)", len(txns)))
	defer timer.End()

	if len(txns) == 0 {
		return nil, ErrEmptyLedger
	}

	statementTotal := decimal.Zero
	for _, balance := range statements {
		statementTotal = statementTotal.Add(balance)
	}
	activityTotal := Sum(txns)

	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	SortByDate(sorted)

	opening := Transaction{
		Date:        sorted[0].Date.AddDays(-1),
		Amount:      statementTotal.Sub(activityTotal),
		Account:     OpeningAccount,
		Description: OpeningDescription,
	}
	opening.Balance = opening.Amount

	running := opening.Balance
	for i := range sorted {
		running = running.Add(sorted[i].Amount)
		sorted[i].Balance = running
	}

	return &Reconciliation{
		Opening:        opening,
		Entries:        sorted,
		StatementTotal: statementTotal,
		ActivityTotal:  activityTotal,
	}, nil
}

// SortByDate sorts txns by date, keeping the order of same-day transactions.
func SortByDate(txns []Transaction) {
	slices.SortStableFunc(txns, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
}
