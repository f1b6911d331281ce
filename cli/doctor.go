package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/mymoney/output"
	"github.com/robinvdvleuten/mymoney/rules"
)

// DoctorCmd provides doctor utilities for debugging a project.
type DoctorCmd struct {
	Rules RulesCmd `cmd:"" help:"Check the rule store for malformed and unreachable rules."`
}

// RulesCmd checks the rule store.
type RulesCmd struct{}

// Run executes the rules command.
func (cmd *RulesCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, "doctor rules")
	if err != nil {
		return err
	}
	defer s.report()

	settings, err := projectSettings(globals.Dir)
	if err != nil {
		return err
	}

	return checkRules(s.ctx, settings.rulesPath, ctx.Stdout, ctx.Stderr)
}

// checkRules loads the store at path and reports its size and the rules that
// can never match because an earlier rule has the same pattern.
func checkRules(ctx context.Context, path string, stdout, stderr io.Writer) error {
	list, err := rules.NewStore(path).Load(ctx)
	if err != nil {
		var malformed *rules.MalformedRuleError
		if errors.As(err, &malformed) {
			renderFileError(stderr, path, err)
			printError(stderr, "malformed rule")
			return NewCommandError(1)
		}
		return err
	}

	printSuccess(stdout, fmt.Sprintf("%d rule(s) in %s", len(list), pathStyle.Render(path)))

	shadowed := list.Shadowed()
	if len(shadowed) == 0 {
		return nil
	}

	styles := output.NewStyles(stdout)
	_, _ = fmt.Fprintf(stdout, "%s\n", styles.Warning(fmt.Sprintf("%d unreachable rule(s), an earlier rule has the same pattern:", len(shadowed))))
	for _, r := range shadowed {
		_, _ = fmt.Fprintf(stdout, "  %s %s %s\n", styles.Keyword(r.Pattern), styles.Dim("→"), styles.Category(r.Category))
	}
	return nil
}
