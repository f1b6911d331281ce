package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStoreLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	store := NewStore(path)

	list, err := store.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(list))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStoreLoadPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	assert.NoError(t, os.WriteFile(path, []byte("coffee\tdining\nshell|fuel\tcar\r\ncoffee\tgroceries\n"), 0o644))

	list, err := NewStore(path).Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, len(list))
	assert.Equal(t, "coffee", list[0].Pattern)
	assert.Equal(t, "dining", list[0].Category)
	assert.Equal(t, "shell|fuel", list[1].Pattern)
	assert.Equal(t, "car", list[1].Category)
	assert.Equal(t, "groceries", list[2].Category)
}

func TestStoreLoadMalformedLine(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		line     int
	}{
		{"missing tab", "coffee\tdining\nrent housing\n", 2},
		{"too many fields", "a\tb\tc\n", 1},
		{"blank line", "coffee\tdining\n\nfuel\tcar\n", 2},
		{"invalid pattern", "(coffee\tdining\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFilename)
			assert.NoError(t, os.WriteFile(path, []byte(tt.contents), 0o644))

			_, err := NewStore(path).Load(context.Background())
			var malformed *MalformedRuleError
			assert.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.line, malformed.GetLine())
			assert.Equal(t, path, malformed.Filename)
		})
	}
}

func TestStoreAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFilename)
	store := NewStore(path)

	_, err := store.Load(ctx)
	assert.NoError(t, err)

	assert.NoError(t, store.Append(ctx, List{MustNew("coffee", "dining")}))
	assert.NoError(t, store.Append(ctx, List{MustNew("fuel", "car"), MustNew("rent", "")}))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "coffee\tdining\nfuel\tcar\nrent\t\n", string(data))

	// Round trip: the empty category survives as an uncategorized rule.
	list, err := store.Load(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(list))
	assert.Equal(t, "", list[2].Category)
}

func TestStoreAppendTwiceDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), DefaultFilename))
	rules := List{MustNew("coffee", "dining")}

	assert.NoError(t, store.Append(ctx, rules))
	assert.NoError(t, store.Append(ctx, rules))

	list, err := store.Load(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, 1, len(list.Shadowed()))
}
