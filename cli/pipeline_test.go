package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/mymoney/categorize"
	"github.com/robinvdvleuten/mymoney/config"
	"github.com/robinvdvleuten/mymoney/loader"
)

// scriptedPrompter answers questions from a fixed script.
type scriptedPrompter struct {
	answers []string
	asked   int
}

func (p *scriptedPrompter) Ask(_ context.Context, q categorize.Question) (string, error) {
	p.asked++
	if len(p.answers) == 0 {
		return "", errors.New("unexpected prompt: " + q.Title)
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

const projectConfig = `
current_balances:
  checking: "$1,000.00"
  card: "-$50.00"
format:
  checking:
    columns: [0, 2, 1]
    date_format: "%m/%d/%Y"
  card:
    columns: [0, 1, 2]
    order: ascending
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"config.yml":                projectConfig,
		"cats-rule.tsv":             "salary\tincome\n",
		"input/202401/checking.csv": "Date,Amount,Description\n01/31/2024,1000.00,ACME SALARY\n01/15/2024,-4.50,Coffee Shop\n",
		"input/202401/card.csv":     "2024-01-20,Shell Fuel,-50.00\n",
	})
}

func openProject(t *testing.T, root, period string) *config.Project {
	t.Helper()
	prj, err := config.Open(root, period)
	assert.NoError(t, err)
	return prj
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestPipelineRun(t *testing.T) {
	root := sampleProject(t)
	prompter := &scriptedPrompter{answers: []string{"coffee", "dining", "shell", "car"}}

	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: prompter}
	outcome, err := p.Run(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 2, outcome.Learned)
	assert.Equal(t, 3, outcome.Transactions)
	assert.Equal(t, 4, prompter.asked)
	assert.Equal(t, 7, len(outcome.Report.Files))
	assert.Contains(t, outcome.Report.Summary, "Statement ending balance: $950.00")

	assert.Equal(t, "salary\tincome\ncoffee\tdining\nshell\tcar\n", readFile(t, filepath.Join(root, "cats-rule.tsv")))

	balance := readFile(t, filepath.Join(root, "output", "202401", "balance_202401.csv"))
	assert.Equal(t, "date,account,balance\n"+
		"2024-01-14,all-together,4.50\n"+
		"2024-01-15,checking,0.00\n"+
		"2024-01-20,card,-50.00\n"+
		"2024-01-31,checking,950.00\n", balance)

	_, err = os.Stat(filepath.Join(root, "reports", "202401", "breakdown_202401.md"))
	assert.NoError(t, err)
}

func TestPipelineRunAccountDelimiter(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.yml":            "current_balances:\n  card: \"-7,25\"\nlocale:\n  grouping: \".\"\n  decimal: \",\"\nformat:\n  card:\n    columns: [0, 1, 2]\n    delimiter: \";\"\n",
		"cats-rule.tsv":         "fuel\tcar\n",
		"input/202401/card.csv": "2024-01-03;Shell Fuel;-7,25\n",
	})

	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{}}
	outcome, err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, outcome.Transactions)
}

func TestPipelineRunStrictExports(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.yml":                "strict_exports: true\n" + projectConfig,
		"input/202401/checking.csv": "01/15/2024,-4.50,Coffee Shop\n",
	})

	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{}}
	_, err := p.Run(context.Background())
	assert.True(t, errors.Is(err, loader.ErrMissingExport))
}

func TestPipelineRunTwiceDoesNotPrompt(t *testing.T) {
	root := sampleProject(t)

	first := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{answers: []string{"coffee", "dining", "shell", "car"}}}
	_, err := first.Run(context.Background())
	assert.NoError(t, err)

	prompter := &scriptedPrompter{}
	second := &Pipeline{Project: openProject(t, root, "202401"), Prompter: prompter}
	outcome, err := second.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, prompter.asked)
	assert.Equal(t, 0, outcome.Learned)
}

func TestPipelineRunCancelled(t *testing.T) {
	root := sampleProject(t)
	prompter := &scriptedPrompter{answers: []string{"coffee", "dining", "q"}}

	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: prompter}
	outcome, err := p.Run(context.Background())
	assert.True(t, errors.Is(err, categorize.ErrCancelled))
	assert.Equal(t, 1, outcome.Learned)
	assert.Equal(t, "salary\tincome\ncoffee\tdining\n", readFile(t, filepath.Join(root, "cats-rule.tsv")))

	_, err = os.Stat(filepath.Join(root, "reports", "202401", "avg_and_balance.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPipelineRunYearToDate(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.yml":                projectConfig,
		"cats-rule.tsv":             ".\tmisc\n",
		"input/202401/checking.csv": "01/31/2024,1000.00,salary\n",
		"input/202402/checking.csv": "02/29/2024,-4.50,coffee\n",
		"input/202402/card.csv":     "2024-02-20,fuel,-50.00\n",
	})

	p := &Pipeline{Project: openProject(t, root, "2024YTD"), Prompter: &scriptedPrompter{}}
	outcome, err := p.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, outcome.Transactions)

	// Descending exports are assembled newest month first.
	assert.Equal(t, "02/29/2024,-4.50,coffee\n01/31/2024,1000.00,salary\n",
		readFile(t, filepath.Join(root, "input", "2024YTD", "checking.csv")))

	net := readFile(t, filepath.Join(root, "output", "2024YTD", "monthly_net_2024YTD.csv"))
	assert.Equal(t, "month,net\n2024-01,1000.00\n2024-02,-54.50\n", net)
}

func TestPipelineRunEmptyLedger(t *testing.T) {
	root := writeProject(t, map[string]string{"config.yml": projectConfig})

	var stdout, stderr bytes.Buffer
	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{}}
	err := runOnce(context.Background(), p, &stdout, &stderr)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, stderr.String(), "no transactions to reconcile")

	// The rule store is created on first use.
	_, err = os.Stat(filepath.Join(root, "cats-rule.tsv"))
	assert.NoError(t, err)
}

func TestRunOnceDirtyRow(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.yml":                projectConfig,
		"cats-rule.tsv":             ".\tmisc\n",
		"input/202401/checking.csv": "01/31/2024,lots,salary\n",
	})

	var stdout, stderr bytes.Buffer
	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{}}
	err := runOnce(context.Background(), p, &stdout, &stderr)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 1, cmdErr.ExitCode())
	assert.Contains(t, stderr.String(), "checking row 1")
	assert.Contains(t, stderr.String(), "checking.csv")
}

func TestRunOnceMalformedRuleStore(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.yml":    projectConfig,
		"cats-rule.tsv": "salary\tincome\nbroken\n",
	})

	var stdout, stderr bytes.Buffer
	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{}}
	err := runOnce(context.Background(), p, &stdout, &stderr)

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	assert.Contains(t, stderr.String(), "cats-rule.tsv:2")
	assert.Contains(t, stderr.String(), "   broken\n")
}

func TestRunOnceReportsOutcome(t *testing.T) {
	root := sampleProject(t)

	var stdout, stderr bytes.Buffer
	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{answers: []string{"coffee", "dining", "shell", "car"}}}
	err := runOnce(context.Background(), p, &stdout, &stderr)
	assert.NoError(t, err)

	assert.Contains(t, stdout.String(), "Saved 2 new rule(s)")
	assert.Contains(t, stdout.String(), "Average monthly spending: $54.50")
	assert.Contains(t, stdout.String(), "breakdown_202401.html")
	assert.Contains(t, stdout.String(), "Processed 3 transaction(s)")
}

func TestRunOnceCancelled(t *testing.T) {
	root := sampleProject(t)

	var stdout, stderr bytes.Buffer
	p := &Pipeline{Project: openProject(t, root, "202401"), Prompter: &scriptedPrompter{answers: []string{"q"}}}
	err := runOnce(context.Background(), p, &stdout, &stderr)
	assert.True(t, errors.Is(err, categorize.ErrCancelled))
	assert.NoError(t, exitStatus(err))
	assert.Contains(t, stdout.String(), "Cancelled")
}
