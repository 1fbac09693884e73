package pipeline

import (
	"errors"
	"slices"
	"testing"
)

func TestNewMessages(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		lastSeenID string
		want       []string
	}{
		{
			name:       "first run takes everything, reversed",
			candidates: []string{"c", "b", "a"},
			lastSeenID: "",
			want:       []string{"a", "b", "c"},
		},
		{
			name:       "marker in the middle",
			candidates: []string{"e", "d", "c", "b", "a"},
			lastSeenID: "c",
			want:       []string{"d", "e"},
		},
		{
			name:       "marker is the newest message",
			candidates: []string{"c", "b", "a"},
			lastSeenID: "c",
			want:       []string{},
		},
		{
			name:       "marker is the oldest message",
			candidates: []string{"c", "b", "a"},
			lastSeenID: "a",
			want:       []string{"b", "c"},
		},
		{
			name:       "no candidates on first run",
			candidates: []string{},
			lastSeenID: "",
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewMessages(tt.candidates, tt.lastSeenID)
			if err != nil {
				t.Fatalf("NewMessages() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("NewMessages() = %v, want %v", got, tt.want)
			}

			// The computation is a pure function of its inputs.
			again, err := NewMessages(tt.candidates, tt.lastSeenID)
			if err != nil {
				t.Fatalf("second NewMessages() error = %v", err)
			}
			if !slices.Equal(again, got) {
				t.Errorf("NewMessages() not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestNewMessages_MarkerMissing(t *testing.T) {
	_, err := NewMessages([]string{"c", "b", "a"}, "zz")
	if err == nil {
		t.Fatal("NewMessages() with an absent marker must fail, not degrade")
	}

	var werr *WindowError
	if !errors.As(err, &werr) {
		t.Fatalf("error = %T, want *WindowError", err)
	}
	if werr.LastSeenID != "zz" {
		t.Errorf("WindowError.LastSeenID = %q, want zz", werr.LastSeenID)
	}
}
