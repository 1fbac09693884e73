package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/cashew-autofill/internal/config"
	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/logger"
	"github.com/dvloznov/cashew-autofill/internal/mailbox"
	"github.com/dvloznov/cashew-autofill/internal/state"
	"github.com/google/uuid"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, st *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	State        *state.State
	Window       []string
	Cache        *CategoryCache
	Transactions []*domain.Transaction
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, st *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, st); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// Step 1: ResolveWindowStep loads persisted state, searches the mailbox for
// candidate alert messages, and computes the unseen window. A last-seen
// marker that is absent from the candidates fails the run here, before any
// message is touched.
type ResolveWindowStep struct {
	Config     *config.Config
	Source     MessageSource
	Store      StateStore
	MaxResults int64
}

func (s *ResolveWindowStep) Execute(ctx context.Context, st *PipelineState) error {
	log := logger.FromContext(ctx)

	loaded, err := s.Store.Load(ctx)
	if err != nil {
		return err
	}
	st.State = loaded

	maxResults := s.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}

	query := searchQuery(s.Config.SenderAddresses())
	candidates, err := s.Source.Search(ctx, query, maxResults)
	if err != nil {
		return fmt.Errorf("resolveWindow: %w", err)
	}

	window, err := NewMessages(candidates, st.State.LastSeenID)
	if err != nil {
		return fmt.Errorf("resolveWindow: %w", err)
	}
	st.Window = window

	log.Info().
		Int("candidates", len(candidates)).
		Int("unseen", len(window)).
		Msg("resolved message window")
	return nil
}

// searchQuery builds the mailbox query as an OR over the configured alert
// addresses, e.g. "from:a@x.com OR from:b@y.com".
func searchQuery(addresses []string) string {
	terms := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		terms = append(terms, "from:"+addr)
	}
	return strings.Join(terms, " OR ")
}

// Step 2: ProcessMessagesStep fetches and parses each unseen message, oldest
// first. A message that cannot be attributed to a bank or does not parse is
// logged and skipped; a mailbox failure aborts the remainder of the run and
// whatever was accumulated is discarded with it.
type ProcessMessagesStep struct {
	Config *config.Config
	Source MessageSource
	Oracle Classifier
}

func (s *ProcessMessagesStep) Execute(ctx context.Context, st *PipelineState) error {
	log := logger.FromContext(ctx)

	st.Cache = NewCategoryCache(s.Oracle, s.Config.Categories, st.State.CategoryCache)

	for i, id := range st.Window {
		if i > 0 {
			if err := pause(ctx, fetchPause); err != nil {
				return fmt.Errorf("processMessages: %w", err)
			}
		}

		msg, err := s.Source.Fetch(ctx, id)
		if err != nil {
			// A body-shape problem is that message's defect, not a transport
			// failure; skipping it keeps the run from wedging on a message
			// that will never decode.
			if errors.Is(err, mailbox.ErrMalformedBody) {
				log.Warn().Str("message_id", id).Err(err).Msg("skipping message with malformed body")
				continue
			}
			return fmt.Errorf("processMessages: fetching %s: %w", id, err)
		}

		bank, err := IdentifyBank(msg.Headers, s.Config.Banks)
		if err != nil {
			if errors.Is(err, ErrUnknownSender) {
				log.Warn().Str("message_id", id).Err(err).Msg("skipping message from unknown sender")
				continue
			}
			return fmt.Errorf("processMessages: %w", err)
		}

		msgLog := log.With().Str("message_id", id).Stringer("bank", bank).Logger()
		tx, err := ParseStatement(logger.WithContext(ctx, msgLog), bank, msg.Body, msg.SentAt, st.Cache)
		if err != nil {
			msgLog.Warn().Err(err).Msg("skipping message that failed to parse")
			continue
		}
		if tx == nil {
			// Diagnostics were already logged by the parser.
			continue
		}

		msgLog.Info().Str("title", tx.Title).Str("category", tx.Category).Msg("extracted transaction")
		st.Transactions = append(st.Transactions, tx)
	}
	return nil
}

// pause waits for the rate-limit interval, bailing out early when the run
// context is cancelled.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Step 3: FinalizeStep is the single commit point. Only when at least one
// transaction was produced does it deliver the batch, advance the last-seen
// marker to the newest id in the window, and rewrite the persisted state.
// An empty batch leaves everything untouched.
type FinalizeStep struct {
	Deliverer Deliverer
	Store     StateStore
}

func (s *FinalizeStep) Execute(ctx context.Context, st *PipelineState) error {
	log := logger.FromContext(ctx)

	if len(st.Transactions) == 0 {
		log.Info().Msg("no transactions extracted, leaving persisted state untouched")
		return nil
	}

	if err := s.Deliverer.Deliver(ctx, st.Transactions); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	// The marker advances to the newest candidate in the window even when
	// some of its messages failed to parse; they will not be retried.
	st.State.LastSeenID = st.Window[len(st.Window)-1]
	st.State.CategoryCache = st.Cache.Entries()
	if err := s.Store.Save(ctx, st.State); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	log.Info().
		Int("transactions", len(st.Transactions)).
		Str("last_seen_id", st.State.LastSeenID).
		Msg("batch delivered and state advanced")
	return nil
}

// Run executes one ingestion pass end to end and returns the delivered
// transactions, if any.
func Run(ctx context.Context, cfg *config.Config, source MessageSource, oracle Classifier, deliverer Deliverer, store StateStore) ([]*domain.Transaction, error) {
	log := logger.FromContext(ctx).With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx, log)

	st := &PipelineState{}
	p := NewPipeline(
		&ResolveWindowStep{Config: cfg, Source: source, Store: store},
		&ProcessMessagesStep{Config: cfg, Source: source, Oracle: oracle},
		&FinalizeStep{Deliverer: deliverer, Store: store},
	)
	if err := p.Execute(ctx, st); err != nil {
		return nil, err
	}
	return st.Transactions, nil
}
