package pipeline

import (
	"context"

	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/mailbox"
	"github.com/dvloznov/cashew-autofill/internal/state"
)

// MessageSource is the mailbox collaborator. Search returns message ids
// newest first; Fetch returns a message with its body already decoded.
type MessageSource interface {
	Search(ctx context.Context, query string, maxResults int64) ([]string, error)
	Fetch(ctx context.Context, id string) (*mailbox.Message, error)
}

// Classifier answers which spending category a merchant belongs to, given
// the closed list of valid labels. Answers are freeform text.
type Classifier interface {
	Classify(ctx context.Context, merchant string, categories []string) (string, error)
}

// Deliverer hands a finished batch to the downstream expense app.
type Deliverer interface {
	Deliver(ctx context.Context, txs []*domain.Transaction) error
}

// StateStore persists the last-seen marker and the category cache.
type StateStore interface {
	Load(ctx context.Context) (*state.State, error)
	Save(ctx context.Context, st *state.State) error
}
