package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// TokenSource builds a self-refreshing OAuth token source from the client
// secrets file and a previously provisioned token file. When the underlying
// source refreshes the token, the new one is written back so the next run
// does not have to refresh again.
//
// There is no local browser flow here: provisioning the initial token.json is
// a one-time manual step.
func TokenSource(ctx context.Context, credentialsPath, tokenPath string) (oauth2.TokenSource, error) {
	secrets, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("mailbox: reading client secrets %s: %w", credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(secrets, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("mailbox: parsing client secrets: %w", err)
	}

	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("mailbox: reading token %s (provision it first): %w", tokenPath, err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(raw, tok); err != nil {
		return nil, fmt.Errorf("mailbox: parsing token %s: %w", tokenPath, err)
	}

	return &savingTokenSource{
		path: tokenPath,
		src:  cfg.TokenSource(ctx, tok),
		last: tok,
	}, nil
}

// savingTokenSource wraps a token source and persists refreshed tokens.
type savingTokenSource struct {
	path string
	src  oauth2.TokenSource

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil && s.last.AccessToken == tok.AccessToken {
		return tok, nil
	}
	s.last = tok

	raw, err := json.Marshal(tok)
	if err != nil {
		return nil, fmt.Errorf("mailbox: encoding refreshed token: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return nil, fmt.Errorf("mailbox: writing refreshed token %s: %w", s.path, err)
	}
	return tok, nil
}
