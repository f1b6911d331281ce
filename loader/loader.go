// Package loader reads account exports from disk. Each account of a period
// is a CSV file named after the account in the period's input directory:
//
//	input/202401/checking.csv
//	input/202401/savings.csv
//
// Rows are returned as raw string fields; interpreting them is up to the
// ledger builder. A year-to-date period is assembled from the monthly
// directories of that year before it is loaded:
//
//	loader := loader.New()
//	if err := loader.AssembleYearToDate(ctx, "input", "2024", accounts); err != nil {
//		return err
//	}
//	rows, err := loader.LoadAccount(ctx, "input/2024YTD/checking.csv")
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/robinvdvleuten/mymoney/telemetry"
)

// ErrMissingExport is returned in strict mode when an account has no export
// for the period.
var ErrMissingExport = errors.New("no export found for account")

// Loader reads account exports.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithStrict(), WithComma(';'), WithAccountComma("card", '\t'))
type Loader struct {
	// Strict makes a missing export an error instead of a warning.
	Strict bool
	// Comma is the field delimiter.
	Comma rune

	commas map[string]rune
}

// Option configures how exports are read.
type Option func(*Loader)

// WithStrict makes a missing account export fail the load.
func WithStrict() Option {
	return func(l *Loader) {
		l.Strict = true
	}
}

// WithComma sets the field delimiter, ',' by default.
func WithComma(r rune) Option {
	return func(l *Loader) {
		l.Comma = r
	}
}

// WithAccountComma sets the field delimiter of a single account's export,
// overriding the loader's default.
func WithAccountComma(account string, r rune) Option {
	return func(l *Loader) {
		if l.commas == nil {
			l.commas = make(map[string]rune)
		}
		l.commas[account] = r
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{Comma: ','}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Account is the export of one account.
type Account struct {
	Name string
	Rows [][]string
}

// Load reads the exports of accounts from dir, in the given order. Accounts
// without an export are skipped with a warning unless the loader is strict.
func (l *Loader) Load(ctx context.Context, dir string, accounts []string) ([]Account, error) {
	timer := telemetry.StartTimer(ctx, "loader.load")
	defer timer.End()

	logger := log.FromContext(ctx)

	out := make([]Account, 0, len(accounts))
	for _, name := range accounts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		path := filepath.Join(dir, name+".csv")
		rows, err := l.readExport(path, l.comma(name))
		if errors.Is(err, os.ErrNotExist) {
			if l.Strict {
				return nil, fmt.Errorf("%w %s: %s", ErrMissingExport, name, path)
			}
			logger.Warn("no CSV file found for account", "account", name, "path", path)
			continue
		}
		if err != nil {
			return nil, err
		}

		logger.Debug("loaded account export", "account", name, "rows", len(rows))
		out = append(out, Account{Name: name, Rows: rows})
	}
	return out, nil
}

// LoadAccount reads a single export with the default delimiter. Rows may have
// differing field counts.
func (l *Loader) LoadAccount(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.readExport(path, l.Comma)
}

func (l *Loader) comma(account string) rune {
	if r, ok := l.commas[account]; ok {
		return r
	}
	return l.Comma
}

func (l *Loader) readExport(path string, comma rune) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	rows, err := parse(bytes.NewReader(data), comma)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func parse(r io.Reader, comma rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// Export names an account and the order its export lists rows in.
type Export struct {
	Name       string
	Descending bool
}

var monthDir = regexp.MustCompile(`^(\d{4})(\d{2})$`)

// AssembleYearToDate builds root/<year>YTD from the monthly directories
// root/<year>MM. The export of each account is the concatenation of its
// monthly exports: in month order for accounts that list rows oldest first,
// and in reverse month order for accounts that list them newest first, so
// the combined file keeps the account's row order. Any previous
// year-to-date directory is replaced.
func (l *Loader) AssembleYearToDate(ctx context.Context, root, year string, exports []Export) error {
	timer := telemetry.StartTimer(ctx, "loader.year_to_date")
	defer timer.End()

	months, err := MonthDirs(root, year)
	if err != nil {
		return err
	}

	ytd := filepath.Join(root, year+"YTD")
	if err := os.RemoveAll(ytd); err != nil {
		return fmt.Errorf("failed to clear %s: %w", ytd, err)
	}
	if err := os.MkdirAll(ytd, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", ytd, err)
	}

	logger := log.FromContext(ctx)
	for _, exp := range exports {
		order := months
		if exp.Descending {
			order = reversed(months)
		}

		var buf bytes.Buffer
		found := 0
		for _, month := range order {
			data, err := os.ReadFile(filepath.Join(root, month, exp.Name+".csv"))
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug("no export for month", "account", exp.Name, "month", month)
				continue
			}
			if err != nil {
				return err
			}
			found++

			buf.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				buf.WriteByte('\n')
			}
		}

		if found == 0 {
			continue
		}

		path := filepath.Join(ytd, exp.Name+".csv")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("assembled year-to-date export", "account", exp.Name, "months", found)
	}
	return nil
}

// MonthDirs lists the YYYYMM directories of year under root in ascending
// order.
func MonthDirs(root, year string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var months []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := monthDir.FindStringSubmatch(e.Name())
		if m == nil || m[1] != year {
			continue
		}
		months = append(months, e.Name())
	}
	sort.Strings(months)
	return months, nil
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
