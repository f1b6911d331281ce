// Package cli implements the mymoney commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/robinvdvleuten/mymoney/categorize"
	"github.com/robinvdvleuten/mymoney/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// newPrompter returns an interactive form prompter on a terminal and a
// line prompter on pipes, so scripted input keeps working.
func newPrompter(in io.Reader, out io.Writer) categorize.Prompter {
	if isTerminal() {
		return FormPrompter{}
	}
	return categorize.NewLinePrompter(in, out)
}

// FormPrompter asks questions with a huh input form.
type FormPrompter struct{}

// Ask shows q as a single-field form. Aborting the form counts as quitting.
func (FormPrompter) Ask(ctx context.Context, q categorize.Question) (string, error) {
	var answer string

	input := huh.NewInput().
		Title(q.Title).
		Description(strings.TrimSpace(q.Given + "\n" + q.Description)).
		Value(&answer)
	if q.Validate != nil {
		input = input.Validate(func(s string) error {
			return q.Validate(strings.ToLower(s))
		})
	}

	err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return "", categorize.ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return answer, nil
}

// newLogger creates the stderr logger for level.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: "mymoney",
	}), nil
}

// session is the context of one command invocation: its logger and, with
// --telemetry, a collector whose report is printed once.
type session struct {
	ctx    context.Context
	report func()
}

func newSession(kctx *kong.Context, globals *Globals, name string) (*session, error) {
	logger, err := newLogger(kctx.Stderr, globals.LogLevel)
	if err != nil {
		return nil, err
	}

	s := &session{
		ctx:    log.WithContext(context.Background(), logger),
		report: func() {},
	}
	logger.Debug("starting", "command", name, "version", Version, "commit", CommitSHA)

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		s.ctx = telemetry.WithCollector(s.ctx, collector)

		rootTimer := collector.Start(name)
		s.ctx = telemetry.WithRootTimer(s.ctx, rootTimer)

		var once sync.Once
		s.report = func() {
			once.Do(func() {
				rootTimer.End()
				_, _ = fmt.Fprintln(kctx.Stderr)
				collector.Report(kctx.Stderr)
			})
		}
	}

	return s, nil
}
