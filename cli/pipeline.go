package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/mymoney/categorize"
	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/loader"
	"github.com/robinvdvleuten/mymoney/report"
	"github.com/robinvdvleuten/mymoney/rules"
)

// Pipeline runs one period of a project: it loads the rule store and the
// account exports, categorizes and reconciles the transactions and writes the
// reports.
type Pipeline struct {
	Project  *config.Project
	Prompter categorize.Prompter
}

// Outcome describes a pipeline run.
type Outcome struct {
	// Learned is the number of rules appended to the rule store.
	Learned      int
	Transactions int
	Report       *report.Result
}

// Run executes the pipeline. Rules learned during ingestion are appended to
// the rule store once ingestion stops, whether it completed, failed or was
// cancelled by the operator. Cancellation is returned as
// categorize.ErrCancelled.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	logger := log.FromContext(ctx)
	prj := p.Project
	cfg := prj.Config

	if err := prj.Ensure(); err != nil {
		return nil, err
	}

	ldr, err := newLoader(cfg)
	if err != nil {
		return nil, err
	}
	if year, ok := prj.YearToDate(); ok {
		exports := make([]loader.Export, 0, len(cfg.Accounts))
		for _, acct := range cfg.Accounts {
			exports = append(exports, loader.Export{Name: acct.Name, Descending: acct.Order == config.OrderDescending})
		}
		if err := ldr.AssembleYearToDate(ctx, prj.InputRoot(), year, exports); err != nil {
			return nil, err
		}
	}

	store := rules.NewStore(prj.RulesPath())
	persisted, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	set := rules.NewSet(persisted)
	logger.Debug("loaded rules", "path", store.Path(), "count", len(persisted))

	outcome := &Outcome{}
	txns, ingestErr := p.ingest(ctx, ldr, set)
	outcome.Transactions = len(txns)

	pending := len(set.Pending())
	if err := set.Flush(ctx, store); err != nil {
		return outcome, fmt.Errorf("failed to save learned rules: %w", err)
	}
	outcome.Learned = pending

	if ingestErr != nil {
		return outcome, ingestErr
	}
	return outcome, p.finish(ctx, txns, outcome)
}

func (p *Pipeline) ingest(ctx context.Context, ldr *loader.Loader, set *rules.Set) ([]ledger.Transaction, error) {
	cfg := p.Project.Config

	categorizer := categorize.New(p.Prompter, categorize.WithMaxCategoryLength(cfg.Categories.MaxLength))
	builder := ledger.NewBuilder(func(ctx context.Context, description string, amount decimal.Decimal) (string, error) {
		return categorizer.Categorize(ctx, set, categorize.Query{Description: description, Amount: &amount})
	}, ledger.WithNumberFormat(cfg.NumberFormat()))

	names := make([]string, 0, len(cfg.Accounts))
	formats := make(map[string]ledger.Format, len(cfg.Accounts))
	for _, acct := range cfg.Accounts {
		f, err := acct.Format()
		if err != nil {
			return nil, &config.Error{Filename: config.Filename, Err: fmt.Errorf("format.%s: %w", acct.Name, err)}
		}
		names = append(names, acct.Name)
		formats[acct.Name] = f
	}

	accounts, err := ldr.Load(ctx, p.Project.InputDir(), names)
	if err != nil {
		return nil, err
	}

	for _, acct := range accounts {
		if err := builder.Ingest(ctx, acct.Name, acct.Rows, formats[acct.Name]); err != nil {
			return builder.Transactions(), err
		}
	}
	return builder.Transactions(), nil
}

func (p *Pipeline) finish(ctx context.Context, txns []ledger.Transaction, outcome *Outcome) error {
	prj := p.Project
	cfg := prj.Config

	statements, err := cfg.Statements()
	if err != nil {
		return &config.Error{Filename: config.Filename, Err: err}
	}

	rec, err := ledger.Reconcile(ctx, statements, txns)
	if errors.Is(err, ledger.ErrEmptyLedger) {
		return fmt.Errorf("%s: %w", prj.InputDir(), err)
	}
	if err != nil {
		return err
	}

	tag, err := cfg.Language()
	if err != nil {
		return err
	}
	renderer := report.New(prj.Period,
		report.WithLanguage(tag),
		report.WithSymbol(cfg.NumberFormat().Symbol),
		report.WithExcluded(cfg.Excluded()),
	)

	res, err := renderer.WriteAll(ctx, report.Dirs{Reports: prj.ReportsDir(), Output: prj.OutputDir()}, rec)
	if err != nil {
		return err
	}
	outcome.Report = res
	return nil
}

// newLoader configures the export loader from the project configuration.
func newLoader(cfg *config.Config) (*loader.Loader, error) {
	var opts []loader.Option
	if cfg.StrictExports {
		opts = append(opts, loader.WithStrict())
	}
	for _, acct := range cfg.Accounts {
		comma, err := acct.Comma()
		if err != nil {
			return nil, &config.Error{Filename: config.Filename, Err: fmt.Errorf("format.%s: %w", acct.Name, err)}
		}
		opts = append(opts, loader.WithAccountComma(acct.Name, comma))
	}
	return loader.New(opts...), nil
}
