package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/mymoney/categorize"
	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/rules"
)

type TrainCmd struct {
	File string `help:"Training file: a header line, then category<TAB>description lines." arg:"" type:"existingfile"`
}

func (cmd *TrainCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := newSession(ctx, globals, fmt.Sprintf("train %s", filepath.Base(cmd.File)))
	if err != nil {
		return err
	}
	defer s.report()

	settings, err := projectSettings(globals.Dir)
	if err != nil {
		return err
	}

	store := rules.NewStore(settings.rulesPath)
	persisted, err := store.Load(s.ctx)
	if err != nil {
		var malformed *rules.MalformedRuleError
		if errors.As(err, &malformed) {
			renderFileError(ctx.Stderr, malformed.Filename, err)
			printError(ctx.Stderr, "the rule store is damaged, fix the line above and train again")
			return NewCommandError(1)
		}
		return err
	}
	set := rules.NewSet(persisted)

	f, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	categorizer := categorize.New(newPrompter(os.Stdin, ctx.Stdout), categorize.WithMaxCategoryLength(settings.maxLength))
	n, trainErr := categorizer.Train(s.ctx, set, f)

	pending := len(set.Pending())
	if err := set.Flush(s.ctx, store); err != nil {
		return fmt.Errorf("failed to save learned rules: %w", err)
	}
	if pending > 0 {
		printInfof(ctx.Stdout, "Saved %d new rule(s) to %s", pending, pathStyle.Render(store.Path()))
	}

	var lineErr *categorize.TrainingError
	switch {
	case errors.Is(trainErr, categorize.ErrCancelled):
		printInfof(ctx.Stdout, "Cancelled after %d description(s)", n)
		return nil
	case errors.As(trainErr, &lineErr):
		renderFileError(ctx.Stderr, cmd.File, trainErr)
		printError(ctx.Stderr, "the training file is malformed")
		return NewCommandError(1)
	case trainErr != nil:
		return trainErr
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Trained on %d description(s)", n))
	return nil
}

type rulesSettings struct {
	rulesPath string
	maxLength int
}

// projectSettings reads the rule store location and category length limit
// of the project in dir. Outside a project the defaults apply.
func projectSettings(dir string) (rulesSettings, error) {
	prj, err := config.Open(dir, "")
	if errors.Is(err, config.ErrNoConfig) {
		return rulesSettings{
			rulesPath: filepath.Join(dir, rules.DefaultFilename),
			maxLength: categorize.DefaultMaxCategoryLength,
		}, nil
	}
	if err != nil {
		return rulesSettings{}, err
	}
	return rulesSettings{
		rulesPath: prj.RulesPath(),
		maxLength: prj.Config.Categories.MaxLength,
	}, nil
}
