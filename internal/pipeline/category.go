package pipeline

import (
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// CategoryCache memoizes merchant-to-category answers across runs. Entries
// are written once and never refreshed: a wrong answer stays until someone
// edits the state file by hand.
type CategoryCache struct {
	oracle     Classifier
	categories []string
	entries    map[string]string
}

// NewCategoryCache builds a cache over the given oracle, seeded with the
// entries loaded from persisted state. The entries map is used as the
// backing store, not copied.
func NewCategoryCache(oracle Classifier, categories []string, entries map[string]string) *CategoryCache {
	if entries == nil {
		entries = map[string]string{}
	}
	return &CategoryCache{
		oracle:     oracle,
		categories: categories,
		entries:    entries,
	}
}

// Resolve returns the category for a merchant, consulting the oracle only on
// a cache miss.
func (c *CategoryCache) Resolve(ctx context.Context, merchant string) (string, error) {
	if category, ok := c.entries[merchant]; ok {
		return category, nil
	}

	answer, err := c.oracle.Classify(ctx, merchant, c.categories)
	if err != nil {
		return "", fmt.Errorf("resolve category for %q: %w", merchant, err)
	}

	category := cleanAnswer(answer)
	c.entries[merchant] = category
	return category, nil
}

// Entries exposes the backing map for persistence.
func (c *CategoryCache) Entries() map[string]string {
	return c.entries
}

// cleanAnswer drops one trailing non-alphanumeric rune; the model tends to
// end its answer with a period.
func cleanAnswer(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeLastRuneInString(s)
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return s[:len(s)-size]
	}
	return s
}
