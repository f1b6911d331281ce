package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrNoConfig is returned when a project directory has no config.yml.
var ErrNoConfig = errors.New("project has no " + Filename)

var (
	monthPeriod = regexp.MustCompile(`^\d{6}$`)
	ytdPeriod   = regexp.MustCompile(`^(\d{4})YTD$`)
)

// Project is a project directory opened for a single period.
//
//	<root>/config.yml
//	<root>/input/<period>/<account>.csv
//	<root>/output/<period>/
//	<root>/reports/<period>/
type Project struct {
	Root   string
	Period string
	Config *Config
}

// Open loads the configuration of the project at root.
func Open(root, period string) (*Project, error) {
	path := filepath.Join(root, Filename)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &Error{Filename: path, Err: ErrNoConfig}
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Project{Root: root, Period: period, Config: cfg}, nil
}

// ValidatePeriod checks that period is either YYYYMM or YYYYYTD. An empty
// period is allowed and means the input directory itself.
func ValidatePeriod(period string) error {
	if period == "" || monthPeriod.MatchString(period) || ytdPeriod.MatchString(period) {
		return nil
	}
	return fmt.Errorf("invalid period %q: expected YYYYMM or YYYYYTD", period)
}

// YearToDate returns the year of a YYYYYTD period.
func (p *Project) YearToDate() (year string, ok bool) {
	m := ytdPeriod.FindStringSubmatch(p.Period)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// InputRoot is the directory holding one subdirectory per period.
func (p *Project) InputRoot() string {
	return filepath.Join(p.Root, "input")
}

// InputDir is where the account exports of the period live.
func (p *Project) InputDir() string {
	return filepath.Join(p.InputRoot(), p.Period)
}

// OutputDir is where text and CSV output of the period is written.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Root, "output", p.Period)
}

// ReportsDir is where the rendered breakdowns of the period are written.
func (p *Project) ReportsDir() string {
	return filepath.Join(p.Root, "reports", p.Period)
}

// RulesPath is the location of the rule store.
func (p *Project) RulesPath() string {
	if filepath.IsAbs(p.Config.RulesFile) {
		return p.Config.RulesFile
	}
	return filepath.Join(p.Root, p.Config.RulesFile)
}

// AccountPath is the export of account in the period's input directory.
func (p *Project) AccountPath(account string) string {
	return filepath.Join(p.InputDir(), account+".csv")
}

// Ensure creates the input, output and reports directories of the period.
func (p *Project) Ensure() error {
	for _, dir := range []string{p.InputDir(), p.OutputDir(), p.ReportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
