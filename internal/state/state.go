// Package state persists the ingestion high-water mark and the
// merchant-to-category cache between runs.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvloznov/cashew-autofill/internal/logger"
)

// State is what survives between runs. LastSeenID only ever advances to a
// message id observed in the current run's window; the category cache is
// append-only within a run.
type State struct {
	LastSeenID    string            `json:"last_seen_id"`
	CategoryCache map[string]string `json:"category_cache"`
}

// Fresh returns the first-run state: no marker, empty cache.
func Fresh() *State {
	return &State{CategoryCache: map[string]string{}}
}

// FileStore reads and writes the state as a single JSON file. The file is
// rewritten wholesale on save; there are no partial updates.
type FileStore struct {
	Path string
}

// Load reads the state file. A missing or empty file is not an error: it
// means this is the first run.
func (f *FileStore) Load(ctx context.Context) (*State, error) {
	log := logger.FromContext(ctx)

	raw, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) || (err == nil && len(raw) == 0) {
		log.Warn().Str("path", f.Path).Msg("state file missing or empty, starting fresh")
		return Fresh(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: reading %s: %w", f.Path, err)
	}

	st := &State{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("state: parsing %s: %w", f.Path, err)
	}
	if st.CategoryCache == nil {
		st.CategoryCache = map[string]string{}
	}
	return st, nil
}

// Save rewrites the state file with the given state.
func (f *FileStore) Save(ctx context.Context, st *State) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("state: encoding: %w", err)
	}
	if err := os.WriteFile(f.Path, raw, 0o600); err != nil {
		return fmt.Errorf("state: writing %s: %w", f.Path, err)
	}
	return nil
}
