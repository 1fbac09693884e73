package pipeline

import (
	"errors"
	"fmt"
)

// ErrUnknownSender means a message's From header matched no configured bank
// address (or the message had no From header at all). The message is skipped;
// the run continues.
var ErrUnknownSender = errors.New("unknown sender")

// WindowError reports a non-empty last-seen marker that is absent from the
// candidate list, usually because more messages arrived than the search cap
// returns. The window cannot be computed safely, so the whole run aborts with
// persisted state untouched.
type WindowError struct {
	LastSeenID string
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("last seen message %q not found in the candidate window", e.LastSeenID)
}
