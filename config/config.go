// Package config reads the project configuration, config.yml, which
// describes the accounts of a project: where the fields of each account export
// live, which rows to keep, and the current statement balances.
//
// Accounts are ingested in the order they appear in the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/mymoney/ledger"
	"github.com/robinvdvleuten/mymoney/rules"
)

// Filename is the name of the project configuration file.
const Filename = "config.yml"

// Row orders of account exports.
const (
	OrderAscending  = "ascending"
	OrderDescending = "descending"
)

// Error is returned for configuration that cannot be read or makes no sense.
type Error struct {
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config is the parsed config.yml.
type Config struct {
	RulesFile       string            `yaml:"rules_file"`
	Locale          Locale            `yaml:"locale"`
	Categories      Categories        `yaml:"categories"`
	CurrentBalances map[string]string `yaml:"current_balances"`
	Accounts        Accounts          `yaml:"format"`
	// StrictExports fails a run when an account has no export for the period.
	StrictExports bool `yaml:"strict_exports"`
}

// Locale describes how numbers are written.
type Locale struct {
	// Grouping is a pointer so that an explicit "" (no grouping) can be told
	// apart from an omitted key.
	Grouping *string `yaml:"grouping"`
	Decimal  string  `yaml:"decimal"`
	Symbol   *string `yaml:"symbol"`
	Language string  `yaml:"language"`
}

// Categories holds categorization settings.
type Categories struct {
	MaxLength int      `yaml:"max_length"`
	Excluded  []string `yaml:"excluded"`
}

// Account describes the export of one account.
type Account struct {
	Name       string
	Columns    []int        `yaml:"columns"`
	DateFormat string       `yaml:"date_format"`
	Order      string       `yaml:"order"`
	Delimiter  string       `yaml:"delimiter"`
	Rules      []RuleConfig `yaml:"rules"`
}

// Comma returns the field delimiter of the account's export, ',' when none is
// configured.
func (a Account) Comma() (rune, error) {
	if a.Delimiter == "" {
		return ',', nil
	}
	r := []rune(a.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' || r[0] == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", a.Delimiter)
	}
	return r[0], nil
}

// RuleConfig is an inclusion rule written as [column, pattern, action].
type RuleConfig struct {
	Column  int
	Pattern string
	Action  string
}

// UnmarshalYAML decodes the three-element sequence form.
func (r *RuleConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 3 {
		return fmt.Errorf("line %d: inclusion rule must be [column, pattern, action]", node.Line)
	}
	if err := node.Content[0].Decode(&r.Column); err != nil {
		return fmt.Errorf("line %d: rule column: %w", node.Line, err)
	}
	if err := node.Content[1].Decode(&r.Pattern); err != nil {
		return fmt.Errorf("line %d: rule pattern: %w", node.Line, err)
	}
	if err := node.Content[2].Decode(&r.Action); err != nil {
		return fmt.Errorf("line %d: rule action: %w", node.Line, err)
	}
	return nil
}

// Accounts keeps the accounts in file order.
type Accounts []Account

// UnmarshalYAML decodes a mapping of account name to account, preserving the
// order of the keys.
func (a *Accounts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: format must be a mapping of account names", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var acct Account
		if err := node.Content[i+1].Decode(&acct); err != nil {
			return err
		}
		acct.Name = node.Content[i].Value
		*a = append(*a, acct)
	}
	return nil
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Filename: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, &Error{Filename: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes and validates configuration data, filling in defaults.
func Parse(data []byte) (*Config, error) {
	// config.yml files written on Windows often start with a BOM.
	data = []byte(strings.TrimPrefix(string(data), "\ufeff"))

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RulesFile == "" {
		c.RulesFile = rules.DefaultFilename
	}
	if c.Locale.Decimal == "" {
		c.Locale.Decimal = "."
	}
	if c.Locale.Grouping == nil {
		grouping := ","
		c.Locale.Grouping = &grouping
	}
	if c.Locale.Symbol == nil {
		symbol := "$"
		c.Locale.Symbol = &symbol
	}
	if c.Locale.Language == "" {
		c.Locale.Language = "en-US"
	}
	if c.Categories.MaxLength == 0 {
		c.Categories.MaxLength = 16
	}
	if c.Categories.Excluded == nil {
		c.Categories.Excluded = []string{"income", "transfer"}
	}
	for i := range c.Accounts {
		if c.Accounts[i].Order == "" {
			c.Accounts[i].Order = OrderDescending
		}
	}
}

// Validate checks the configuration for mistakes that would otherwise only
// surface halfway through a run.
func (c *Config) Validate() error {
	var problems []string

	if err := c.NumberFormat().Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("locale: %v", err))
	}
	if _, err := c.Language(); err != nil {
		problems = append(problems, fmt.Sprintf("locale: invalid language %q", c.Locale.Language))
	}
	if c.Categories.MaxLength < 0 {
		problems = append(problems, "categories: max_length must be positive")
	}

	seen := make(map[string]bool)
	for _, acct := range c.Accounts {
		if seen[acct.Name] {
			problems = append(problems, fmt.Sprintf("format.%s: duplicate account", acct.Name))
		}
		seen[acct.Name] = true

		if _, err := acct.Format(); err != nil {
			problems = append(problems, fmt.Sprintf("format.%s: %v", acct.Name, err))
		}
		if _, err := acct.Comma(); err != nil {
			problems = append(problems, fmt.Sprintf("format.%s: %v", acct.Name, err))
		}
		if acct.Order != OrderAscending && acct.Order != OrderDescending {
			problems = append(problems, fmt.Sprintf("format.%s: order must be %s or %s", acct.Name, OrderAscending, OrderDescending))
		}
	}

	nf := c.NumberFormat()
	for name, raw := range c.CurrentBalances {
		if _, err := nf.Parse(raw); err != nil {
			problems = append(problems, fmt.Sprintf("current_balances.%s: %v", name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// NumberFormat returns the format amounts and balances are written in.
func (c *Config) NumberFormat() ledger.NumberFormat {
	nf := ledger.NumberFormat{Decimal: c.Locale.Decimal}
	if c.Locale.Grouping != nil {
		nf.Grouping = *c.Locale.Grouping
	}
	if c.Locale.Symbol != nil {
		nf.Symbol = *c.Locale.Symbol
	}
	return nf
}

// Language returns the language reports are formatted for.
func (c *Config) Language() (language.Tag, error) {
	return language.Parse(c.Locale.Language)
}

// Excluded returns the categories left out of spending figures.
func (c *Config) Excluded() map[string]bool {
	out := make(map[string]bool, len(c.Categories.Excluded))
	for _, cat := range c.Categories.Excluded {
		out[strings.ToLower(cat)] = true
	}
	return out
}

// Statements parses the current statement balances.
func (c *Config) Statements() (map[string]decimal.Decimal, error) {
	nf := c.NumberFormat()
	out := make(map[string]decimal.Decimal, len(c.CurrentBalances))
	for name, raw := range c.CurrentBalances {
		d, err := nf.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("current_balances.%s: %w", name, err)
		}
		out[name] = d
	}
	return out, nil
}

// Format converts the account description into the form the ledger builder
// uses. Columns are date, description and amount, in that order.
func (a Account) Format() (ledger.Format, error) {
	if len(a.Columns) != 3 {
		return ledger.Format{}, fmt.Errorf("columns must list the date, description and amount columns")
	}
	for _, col := range a.Columns {
		if col < 0 {
			return ledger.Format{}, fmt.Errorf("negative column %d", col)
		}
	}

	if _, err := ledger.DateLayout(a.DateFormat); err != nil {
		return ledger.Format{}, err
	}

	f := ledger.Format{
		DateColumn:        a.Columns[0],
		DescriptionColumn: a.Columns[1],
		AmountColumn:      a.Columns[2],
		DateFormat:        a.DateFormat,
	}
	for _, rc := range a.Rules {
		action, err := ledger.ParseAction(rc.Action)
		if err != nil {
			return ledger.Format{}, err
		}
		rule, err := ledger.NewInclusionRule(rc.Column, rc.Pattern, action)
		if err != nil {
			return ledger.Format{}, err
		}
		f.Rules = append(f.Rules, rule)
	}
	return f, nil
}
