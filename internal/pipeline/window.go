package pipeline

import "slices"

// NewMessages computes which candidate ids have not been processed yet.
// candidates come newest-first, as the mailbox search returns them; the
// result is oldest-first so the caller walks them in chronological order and
// the last entry is the id the marker advances to.
//
// An empty lastSeenID means first run: every candidate is new. A non-empty
// lastSeenID that is not in the list is a *WindowError, never a silent full
// or empty window.
func NewMessages(candidates []string, lastSeenID string) ([]string, error) {
	cut := len(candidates)
	if lastSeenID != "" {
		cut = slices.Index(candidates, lastSeenID)
		if cut < 0 {
			return nil, &WindowError{LastSeenID: lastSeenID}
		}
	}

	unseen := make([]string, 0, cut)
	for i := cut - 1; i >= 0; i-- {
		unseen = append(unseen, candidates[i])
	}
	return unseen, nil
}
