package categorize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/mymoney/rules"
)

func TestLinePrompterReadsLines(t *testing.T) {
	var out strings.Builder
	p := NewLinePrompter(strings.NewReader("first\r\nsecond"), &out)
	ctx := context.Background()

	answer, err := p.Ask(ctx, Question{Title: "One?"})
	assert.NoError(t, err)
	assert.Equal(t, "first", answer)

	answer, err = p.Ask(ctx, Question{Title: "Two?"})
	assert.NoError(t, err)
	assert.Equal(t, "second", answer)

	_, err = p.Ask(ctx, Question{Title: "Three?"})
	assert.True(t, errors.Is(err, ErrCancelled))
}

func TestLinePrompterRepromptsOnValidationError(t *testing.T) {
	var out strings.Builder
	p := NewLinePrompter(strings.NewReader("bad\ngood\n"), &out)

	answer, err := p.Ask(context.Background(), Question{
		Title: "Word?",
		Validate: func(s string) error {
			if s == "bad" {
				return errors.New("no bad words")
			}
			return nil
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, "good", answer)
	assert.Equal(t, 2, strings.Count(out.String(), "Word?"))
	assert.Contains(t, out.String(), "no bad words")
}

func TestLinePrompterHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewLinePrompter(strings.NewReader("answer\n"), &strings.Builder{})
	_, err := p.Ask(ctx, Question{Title: "Anything?"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLinePrompterShowsGivenOnlyForPattern(t *testing.T) {
	var out strings.Builder
	p := NewLinePrompter(strings.NewReader("coffee\ndining\n"), &out)
	c := New(p)

	category, err := c.Categorize(context.Background(), rules.NewSet(nil), Query{Description: "Coffee Shop"})
	assert.NoError(t, err)
	assert.Equal(t, "dining", category)

	transcript := out.String()
	assert.Equal(t, 1, strings.Count(transcript, "Given:"))

	pattern, categoryPrompt, ok := strings.Cut(transcript, "Enter a new category")
	assert.True(t, ok)
	assert.Contains(t, pattern, "Given:\n  Descr: [coffee shop]\n")
	assert.NotContains(t, categoryPrompt, "Given:")
	assert.Contains(t, categoryPrompt, "\nCategories must be at most 16 characters.\n=> ")
}
