// Package categorize assigns spending categories to transaction descriptions.
//
// Descriptions are looked up in a rules.Set. When no rule matches, the
// operator is asked for a pattern and a category through a Prompter, and the
// answer is learned as a session rule so the same description never prompts
// twice in one run. Answering "q" at either prompt cancels the run:
// Categorize returns ErrCancelled and the caller is expected to flush the
// session rules before stopping.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/mymoney/rules"
)

// QuitSentinel cancels the run when entered at either prompt.
const QuitSentinel = "q"

// DefaultMaxCategoryLength bounds categories entered at the prompt.
const DefaultMaxCategoryLength = 16

// ErrCancelled is returned once the operator has asked to quit.
var ErrCancelled = errors.New("categorization cancelled by operator")

// Query describes the transaction being categorized.
type Query struct {
	Description string
	// Hint is the category suggested for the transaction, if any. It is used
	// when the operator accepts the suggestion with an empty answer.
	Hint string
	// Amount is shown to the operator when set.
	Amount *decimal.Decimal
}

// Question is a single prompt shown to the operator.
type Question struct {
	Title string
	// Given describes the transaction the question is about.
	Given       string
	Description string
	// Validate, when set, lets interactive prompters reject answers inline.
	// The categorizer validates every answer itself as well.
	Validate func(string) error
}

// Prompter asks the operator a question and returns the raw answer.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Categorizer resolves descriptions to categories.
type Categorizer struct {
	prompter  Prompter
	maxLength int
	aborted   bool
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithMaxCategoryLength overrides DefaultMaxCategoryLength.
func WithMaxCategoryLength(n int) Option {
	return func(c *Categorizer) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// New creates a Categorizer that elicits unknown categories through p.
func New(p Prompter, opts ...Option) *Categorizer {
	c := &Categorizer{
		prompter:  p,
		maxLength: DefaultMaxCategoryLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cancelled reports whether the operator has asked to quit.
func (c *Categorizer) Cancelled() bool {
	return c.aborted
}

// Categorize returns the category for q.Description. Rules learned from the
// operator are added to set. An empty category means the transaction stays
// uncategorized.
func (c *Categorizer) Categorize(ctx context.Context, set *rules.Set, q Query) (string, error) {
	if c.aborted {
		return "", ErrCancelled
	}

	description := strings.ToLower(q.Description)
	if r, ok := set.Lookup(description); ok {
		return r.Category, nil
	}

	return c.elicit(ctx, set, description, q)
}

func (c *Categorizer) elicit(ctx context.Context, set *rules.Set, description string, q Query) (string, error) {
	logger := log.FromContext(ctx)

	pattern, err := c.askPattern(ctx, description, q)
	if err != nil {
		return "", err
	}

	category, err := c.askCategory(ctx)
	if err != nil {
		return "", err
	}

	if category == "" {
		category = q.Hint
	}

	r, err := rules.New(pattern, category)
	if err != nil {
		return "", fmt.Errorf("cannot learn rule for %q: %w", description, err)
	}
	set.Learn(r)

	logger.Debug("learned rule", "pattern", r.Pattern, "category", r.Category)

	return category, nil
}

func (c *Categorizer) askPattern(ctx context.Context, description string, q Query) (string, error) {
	var given strings.Builder
	fmt.Fprintf(&given, "Descr: [%s]", description)
	if q.Amount != nil {
		fmt.Fprintf(&given, "\nAmount: %s", q.Amount.StringFixed(2))
	}
	if q.Hint != "" {
		fmt.Fprintf(&given, "\nCurrent category: %s", q.Hint)
	}

	question := Question{
		Title:    fmt.Sprintf("What pattern? (or '%s' to quit)", QuitSentinel),
		Given:    given.String(),
		Validate: validatePattern,
	}

	for {
		answer, err := c.ask(ctx, question)
		if err != nil {
			return "", err
		}
		if err := validatePattern(answer); err != nil {
			log.FromContext(ctx).Warn("pattern rejected", "pattern", answer, "err", err)
			continue
		}
		return answer, nil
	}
}

func (c *Categorizer) askCategory(ctx context.Context) (string, error) {
	validate := func(s string) error {
		if len(s) > c.maxLength {
			return fmt.Errorf("categories must be at most %d characters", c.maxLength)
		}
		if strings.ContainsAny(s, "\t\r\n") {
			return rules.ErrUnrepresentable
		}
		return nil
	}

	question := Question{
		Title:       fmt.Sprintf("Enter a new category, press Return to accept the current category, or '%s' to quit.", QuitSentinel),
		Description: fmt.Sprintf("Categories must be at most %d characters.", c.maxLength),
		Validate:    validate,
	}

	for {
		answer, err := c.ask(ctx, question)
		if err != nil {
			return "", err
		}
		if err := validate(answer); err != nil {
			continue
		}
		return answer, nil
	}
}

// ask lower-cases the answer and turns the quit sentinel into ErrCancelled.
func (c *Categorizer) ask(ctx context.Context, q Question) (string, error) {
	answer, err := c.prompter.Ask(ctx, q)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			c.aborted = true
		}
		return "", err
	}

	answer = strings.ToLower(answer)
	if answer == QuitSentinel {
		c.aborted = true
		return "", ErrCancelled
	}
	return answer, nil
}

func validatePattern(s string) error {
	if s == QuitSentinel {
		return nil
	}
	_, err := rules.New(s, "")
	return err
}
