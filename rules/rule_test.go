package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestListFirstMatchWins(t *testing.T) {
	list := List{MustNew("a", "X"), MustNew("ab", "Y")}

	r, ok := list.Lookup("abc")
	assert.True(t, ok)
	assert.Equal(t, "X", r.Category)
}

func TestRuleMatchIsSubstringSearch(t *testing.T) {
	tests := []struct {
		pattern     string
		description string
		want        bool
	}{
		{"coffee", "coffee shop purchase", true},
		{"shop", "coffee shop purchase", true},
		{"^shop", "coffee shop purchase", false},
		{"gas|fuel", "shell fuel 1234", true},
		{"Coffee", "coffee shop purchase", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, MustNew(tt.pattern, "x").Match(tt.description))
		})
	}
}

func TestNewRejectsUnrepresentableRules(t *testing.T) {
	_, err := New("a\tb", "x")
	assert.True(t, errors.Is(err, ErrUnrepresentable))

	_, err = New("ab", "line\nbreak")
	assert.True(t, errors.Is(err, ErrUnrepresentable))
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New("(unclosed", "x")
	assert.Error(t, err)
}

func TestSetSessionTakesPrecedence(t *testing.T) {
	set := NewSet(List{MustNew("coffee", "groceries")})
	set.Learn(MustNew("coffee", "dining"))

	r, ok := set.Lookup("coffee shop purchase")
	assert.True(t, ok)
	assert.Equal(t, "dining", r.Category)
}

func TestSetFallsBackToPersisted(t *testing.T) {
	set := NewSet(List{MustNew("fuel", "car")})
	set.Learn(MustNew("coffee", "dining"))

	r, ok := set.Lookup("shell fuel")
	assert.True(t, ok)
	assert.Equal(t, "car", r.Category)

	_, ok = set.Lookup("rent")
	assert.False(t, ok)
}

type recordingAppender struct {
	batches []List
	err     error
}

func (a *recordingAppender) Append(_ context.Context, rules List) error {
	if a.err != nil {
		return a.err
	}
	a.batches = append(a.batches, append(List(nil), rules...))
	return nil
}

func TestSetFlushAppendsEachRuleOnce(t *testing.T) {
	ctx := context.Background()
	set := NewSet(nil)
	dst := &recordingAppender{}

	set.Learn(MustNew("coffee", "dining"))
	assert.NoError(t, set.Flush(ctx, dst))
	assert.NoError(t, set.Flush(ctx, dst))

	set.Learn(MustNew("fuel", "car"))
	assert.NoError(t, set.Flush(ctx, dst))

	assert.Equal(t, 2, len(dst.batches))
	assert.Equal(t, "coffee", dst.batches[0][0].Pattern)
	assert.Equal(t, 1, len(dst.batches[1]))
	assert.Equal(t, "fuel", dst.batches[1][0].Pattern)

	// Flushed rules keep their precedence.
	assert.Equal(t, 2, len(set.Session))
	assert.Equal(t, 0, len(set.Pending()))
}

func TestSetFlushKeepsRulesPendingOnError(t *testing.T) {
	set := NewSet(nil)
	set.Learn(MustNew("coffee", "dining"))

	err := set.Flush(context.Background(), &recordingAppender{err: errors.New("disk full")})
	assert.Error(t, err)
	assert.Equal(t, 1, len(set.Pending()))
}

func TestListShadowed(t *testing.T) {
	list := List{MustNew("a", "X"), MustNew("b", "Y"), MustNew("a", "Z")}

	shadowed := list.Shadowed()
	assert.Equal(t, 1, len(shadowed))
	assert.Equal(t, "Z", shadowed[0].Category)
}
