package pipeline

import (
	"context"
	"errors"
	"testing"
)

func TestCategoryCache_Resolve(t *testing.T) {
	oracle := &stubClassifier{answer: "Dining"}
	cache := NewCategoryCache(oracle, []string{"Dining", "Shopping"}, nil)
	ctx := context.Background()

	got, err := cache.Resolve(ctx, "TIMMYS")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "Dining" {
		t.Errorf("Resolve() = %q, want Dining", got)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle called %d times, want 1", oracle.calls)
	}

	// Second lookup hits the cache, whatever the oracle would say now.
	oracle.answer = "Shopping"
	got, err = cache.Resolve(ctx, "TIMMYS")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if got != "Dining" {
		t.Errorf("second Resolve() = %q, want the cached Dining", got)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle called %d times after cached lookup, want 1", oracle.calls)
	}
}

func TestCategoryCache_SeededEntriesSkipOracle(t *testing.T) {
	oracle := &stubClassifier{answer: "Transit"}
	cache := NewCategoryCache(oracle, []string{"Transit"}, map[string]string{"MANGO": "Shopping"})

	got, err := cache.Resolve(context.Background(), "MANGO")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "Shopping" {
		t.Errorf("Resolve() = %q, want the persisted Shopping", got)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle called %d times for a persisted entry, want 0", oracle.calls)
	}
}

func TestCategoryCache_TrimsTrailingPunctuation(t *testing.T) {
	oracle := &stubClassifier{answer: "Dining."}
	cache := NewCategoryCache(oracle, []string{"Dining"}, nil)

	got, err := cache.Resolve(context.Background(), "TIMMYS")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "Dining" {
		t.Errorf("Resolve() = %q, want Dining", got)
	}
	if cache.Entries()["TIMMYS"] != "Dining" {
		t.Errorf("cached value = %q, want the cleaned Dining", cache.Entries()["TIMMYS"])
	}
}

type failingClassifier struct{}

func (failingClassifier) Classify(ctx context.Context, merchant string, categories []string) (string, error) {
	return "", errors.New("model unavailable")
}

func TestCategoryCache_OracleFailureNotCached(t *testing.T) {
	cache := NewCategoryCache(failingClassifier{}, []string{"Dining"}, nil)

	if _, err := cache.Resolve(context.Background(), "TIMMYS"); err == nil {
		t.Fatal("Resolve() should surface the oracle failure")
	}
	if len(cache.Entries()) != 0 {
		t.Errorf("failed lookup was cached: %v", cache.Entries())
	}
}

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dining.", "Dining"},
		{"Dining", "Dining"},
		{"Bills & Fees!", "Bills & Fees"},
		{"", ""},
		{".", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cleanAnswer(tt.in); got != tt.want {
				t.Errorf("cleanAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
