package pipeline

import "time"

const (
	// DefaultMaxResults caps the mailbox search. A backlog deeper than this
	// pushes the last-seen marker out of the window and the run aborts with
	// a WindowError.
	DefaultMaxResults int64 = 10

	// fetchPause spaces out message fetches. Gmail caps messages.get at 50
	// queries per second; this is a courtesy, not a correctness requirement.
	fetchPause = 20 * time.Millisecond
)
