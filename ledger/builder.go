package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/mymoney/telemetry"
)

// Format tells the builder where to find the fields of an account export.
type Format struct {
	DateColumn        int
	DescriptionColumn int
	AmountColumn      int
	// DateFormat is a strptime-style template ("%m/%d/%Y") or a Go layout.
	// Dates are expected in ISO format when empty.
	DateFormat string
	// Rules are the account's inclusion rules, evaluated in order.
	Rules []InclusionRule
}

// CategorizeFunc returns the category for a lower-cased description.
type CategorizeFunc func(ctx context.Context, description string, amount decimal.Decimal) (string, error)

// Builder assembles the transactions of all accounts.
type Builder struct {
	categorize CategorizeFunc
	numbers    NumberFormat
	txns       []Transaction
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithNumberFormat sets the format amounts are parsed with.
func WithNumberFormat(f NumberFormat) BuilderOption {
	return func(b *Builder) {
		b.numbers = f
	}
}

// NewBuilder creates a builder that categorizes accepted rows with categorize.
func NewBuilder(categorize CategorizeFunc, opts ...BuilderOption) *Builder {
	b := &Builder{
		categorize: categorize,
		numbers:    DefaultNumberFormat(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ingest appends the transactions in rows to the builder. Comment rows, the
// header row, rows without a description and rows rejected by the inclusion
// rules are skipped. A row with an unparsable date or amount aborts the
// ingestion; rows accepted before it are kept, as are rows accepted before a
// categorization error.
func (b *Builder) Ingest(ctx context.Context, account string, rows [][]string, format Format) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ingest %s (%d rows)", account, len(rows)))
	defer timer.End()

	layout, err := DateLayout(format.DateFormat)
	if err != nil {
		return fmt.Errorf("%s: %w", account, err)
	}

	logger := log.FromContext(ctx).With("account", account)
	accepted, skipped := 0, 0

	for i, raw := range rows {
		rowNo := i + 1

		if err := ctx.Err(); err != nil {
			return err
		}

		if len(raw) == 0 || strings.HasPrefix(raw[0], "#") {
			skipped++
			continue
		}

		row := make([]string, len(raw))
		for j, field := range raw {
			row[j] = strings.ToLower(field)
		}

		dateField, err := column(row, format.DateColumn)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "date", Err: err}
		}
		if strings.Contains(dateField, "date") {
			skipped++
			continue
		}

		description, err := column(row, format.DescriptionColumn)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "description", Err: err}
		}
		if description == "" {
			skipped++
			continue
		}

		keep, err := Included(row, format.Rules)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "rule", Err: err}
		}
		if !keep {
			skipped++
			continue
		}

		date, err := parseRowDate(dateField, layout)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "date", Value: dateField, Err: err}
		}

		amountField, err := column(row, format.AmountColumn)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "amount", Err: err}
		}
		amount, err := b.numbers.Parse(amountField)
		if err != nil {
			return &RowError{Account: account, Row: rowNo, Field: "amount", Value: amountField, Err: err}
		}

		category, err := b.categorize(ctx, description, amount)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", account, rowNo, err)
		}

		b.txns = append(b.txns, Transaction{
			Date:        date,
			Amount:      amount,
			Account:     account,
			Description: description,
			Category:    category,
		})
		accepted++
	}

	logger.Debug("ingested export", "accepted", accepted, "skipped", skipped)

	return nil
}

// Transactions returns the ingested transactions in ingestion order.
func (b *Builder) Transactions() []Transaction {
	out := make([]Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}

// Len returns the number of ingested transactions.
func (b *Builder) Len() int {
	return len(b.txns)
}

func column(row []string, i int) (string, error) {
	if i < 0 || i >= len(row) {
		return "", &ColumnError{Column: i, Width: len(row)}
	}
	return row[i], nil
}
