package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/mymoney/categorize"
	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/loader"
	"github.com/robinvdvleuten/mymoney/rules"
)

type RunCmd struct {
	Period string `help:"Period to process: YYYYMM, or YYYYYTD for the year so far." arg:""`
	Watch  bool   `help:"Run again whenever the configuration or an account export changes." short:"w"`
}

func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := config.ValidatePeriod(cmd.Period); err != nil {
		return err
	}

	s, err := newSession(ctx, globals, fmt.Sprintf("run %s", cmd.Period))
	if err != nil {
		return err
	}
	defer s.report()

	prj, err := config.Open(globals.Dir, cmd.Period)
	if errors.Is(err, config.ErrNoConfig) {
		printError(ctx.Stderr, "Run mymoney from inside a project directory and create a config.yml there.")
		return NewCommandError(1)
	}
	if err != nil {
		return err
	}

	pipeline := &Pipeline{
		Project:  prj,
		Prompter: newPrompter(os.Stdin, ctx.Stdout),
	}

	err = runOnce(s.ctx, pipeline, ctx.Stdout, ctx.Stderr)
	if !cmd.Watch || errors.Is(err, categorize.ErrCancelled) {
		return exitStatus(err)
	}

	watchCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt)
	defer stop()

	printInfof(ctx.Stdout, "Watching %s for changes, press Ctrl+C to stop", pathStyle.Render(prj.InputRoot()))
	return exitStatus(watch(watchCtx, watchPaths(prj), func(runCtx context.Context) error {
		// The configuration may have changed as well.
		reopened, err := config.Open(globals.Dir, cmd.Period)
		if err != nil {
			return err
		}
		pipeline.Project = reopened
		return runOnce(runCtx, pipeline, ctx.Stdout, ctx.Stderr)
	}))
}

// runOnce runs the pipeline and reports its outcome. Cancellation by the
// operator is reported as information and returned as is.
func runOnce(ctx context.Context, pipeline *Pipeline, stdout, stderr io.Writer) error {
	outcome, err := pipeline.Run(ctx)

	if outcome != nil && outcome.Learned > 0 {
		printInfof(stdout, "Saved %d new rule(s) to %s", outcome.Learned, pathStyle.Render(pipeline.Project.RulesPath()))
	}

	if errors.Is(err, categorize.ErrCancelled) {
		printInfof(stdout, "Cancelled")
		return err
	}

	var malformed *rules.MalformedRuleError
	if errors.As(err, &malformed) {
		renderFileError(stderr, malformed.Filename, err)
		printError(stderr, "the rule store is damaged, fix the line above and run again")
		return NewCommandError(1)
	}

	var rowErr *ledger.RowError
	if errors.As(err, &rowErr) {
		printError(stderr, err.Error())
		printInfof(stderr, "Fix the row in %s or add an inclusion rule that skips it", pathStyle.Render(pipeline.Project.AccountPath(rowErr.GetAccount())))
		return NewCommandError(1)
	}

	if errors.Is(err, ledger.ErrEmptyLedger) {
		printError(stderr, err.Error())
		return NewCommandError(1)
	}

	if err != nil {
		return err
	}

	_, _ = fmt.Fprint(stdout, outcome.Report.Summary)
	for _, path := range outcome.Report.Files {
		printSuccess(stdout, "Wrote "+pathStyle.Render(path))
	}
	printSuccess(stdout, fmt.Sprintf("Processed %d transaction(s)", outcome.Transactions))
	return nil
}

// renderFileError prints err with the surrounding lines of filename.
func renderFileError(w io.Writer, filename string, err error) {
	source, readErr := os.ReadFile(filename)
	if readErr != nil {
		source = nil
	}
	_, _ = fmt.Fprintln(w, NewErrorRenderer(source).Render(err))
}

// exitStatus turns operator cancellation into a clean exit.
func exitStatus(err error) error {
	if errors.Is(err, categorize.ErrCancelled) {
		return nil
	}
	return err
}

// watchPaths returns the files and directories whose changes trigger a new
// run: the configuration and the input directories of the period.
func watchPaths(prj *config.Project) []string {
	paths := []string{filepath.Join(prj.Root, config.Filename)}

	year, ok := prj.YearToDate()
	if !ok {
		return append(paths, prj.InputDir())
	}

	// The year-to-date directory is rebuilt by every run, so watch the
	// monthly directories it is assembled from.
	months, err := loader.MonthDirs(prj.InputRoot(), year)
	if err != nil {
		return paths
	}
	for _, month := range months {
		paths = append(paths, filepath.Join(prj.InputRoot(), month))
	}
	return paths
}

// watch calls run whenever one of paths changes, until ctx is done or run
// is cancelled by the operator. Runs happen on the calling goroutine, one at
// a time, so the prompter is never shared.
func watch(ctx context.Context, paths []string, run func(context.Context) error) error {
	logger := log.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			logger.Warn("failed to watch", "path", path, "err", err)
		}
	}

	// Debounce timer - editors and bank exports often write files in several steps
	const debounceDelay = 250 * time.Millisecond

	var debounce <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounceDelay)
			debounce = timer.C

		case <-debounce:
			debounce = nil
			if err := run(ctx); err != nil {
				if errors.Is(err, categorize.ErrCancelled) {
					return err
				}
				var cmdErr *CommandError
				if !errors.As(err, &cmdErr) {
					logger.Error("run failed", "err", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", err)
		}
	}
}
