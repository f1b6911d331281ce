// Package report renders a reconciled ledger into the files of a period:
//
//	reports/<period>/breakdown_<period>.md     spending grouped by category
//	reports/<period>/breakdown_<period>.html   the same, as a web page
//	reports/<period>/avg_and_balance.txt       average spending and ending balance
//	output/<period>/transactions_<period>.txt  every entry with its running balance
//	output/<period>/balance_<period>.csv       running balance per entry
//	output/<period>/monthly_net_<period>.csv   net income per month
//	output/<period>/spending_<period>.csv      spending per month and category
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

// Renderer renders the reports of one period.
type Renderer struct {
	period   string
	printer  *message.Printer
	symbol   string
	excluded map[string]bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLanguage formats currency amounts in the summary for tag.
func WithLanguage(tag language.Tag) Option {
	return func(r *Renderer) {
		r.printer = message.NewPrinter(tag)
	}
}

// WithSymbol sets the currency symbol of the summary and the breakdown
// totals, "$" by default.
func WithSymbol(symbol string) Option {
	return func(r *Renderer) {
		r.symbol = symbol
	}
}

// WithExcluded sets the categories left out of spending figures.
func WithExcluded(categories map[string]bool) Option {
	return func(r *Renderer) {
		r.excluded = categories
	}
}

// New creates a Renderer for period.
func New(period string, opts ...Option) *Renderer {
	r := &Renderer{
		period:   period,
		printer:  message.NewPrinter(language.AmericanEnglish),
		symbol:   "$",
		excluded: map[string]bool{"income": true, "transfer": true},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dirs are the directories reports are written to.
type Dirs struct {
	Reports string
	Output  string
}

// Result lists what WriteAll produced.
type Result struct {
	Files   []string
	Summary string
}

// WriteAll writes every report of rec. It returns the paths written and the
// summary text, which callers usually print as well.
func (r *Renderer) WriteAll(ctx context.Context, dirs Dirs, rec *ledger.Reconciliation) (*Result, error) {
	timer := telemetry.StartTimer(ctx, "report.write")
	defer timer.End()

	res := &Result{Summary: r.Summary(rec)}

	files := []struct {
		path   string
		render func(io.Writer) error
	}{
		{filepath.Join(dirs.Reports, "breakdown_"+r.period+".md"), func(w io.Writer) error { return r.BreakdownMarkdown(w, rec) }},
		{filepath.Join(dirs.Reports, "breakdown_"+r.period+".html"), func(w io.Writer) error { return r.BreakdownHTML(w, rec) }},
		{filepath.Join(dirs.Reports, "avg_and_balance.txt"), func(w io.Writer) error {
			_, err := io.WriteString(w, res.Summary)
			return err
		}},
		{filepath.Join(dirs.Output, "transactions_"+r.period+".txt"), func(w io.Writer) error { return WriteTransactions(w, rec) }},
		{filepath.Join(dirs.Output, "balance_"+r.period+".csv"), func(w io.Writer) error { return WriteBalance(w, rec) }},
		{filepath.Join(dirs.Output, "monthly_net_"+r.period+".csv"), func(w io.Writer) error { return WriteMonthlyNet(w, rec) }},
		{filepath.Join(dirs.Output, "spending_"+r.period+".csv"), func(w io.Writer) error { return WriteSpending(w, rec, r.excluded) }},
	}

	logger := log.FromContext(ctx)
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.render(&buf); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", filepath.Base(f.path), err)
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		logger.Debug("wrote report", "path", f.path, "bytes", buf.Len())
		res.Files = append(res.Files, f.path)
	}

	return res, nil
}
