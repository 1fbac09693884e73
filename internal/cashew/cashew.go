// Package cashew is the delivery collaborator: it packs a batch of
// transactions into a Cashew addTransaction deep link and hands the link to
// the destination phone over iMessage.
package cashew

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"

	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/logger"
)

const (
	// Route is the Cashew web app endpoint that accepts prefilled transactions.
	Route = "https://cashewapp.web.app"

	// scriptPath is the AppleScript that sends an iMessage; resolved relative
	// to the working directory, same as the config and token files.
	scriptPath = "send_imessage.applescript"
)

type payload struct {
	Transactions []*domain.Transaction `json:"transactions"`
}

// Link builds the addTransaction deep link for a batch. The JSON payload is
// query-escaped wholesale; amounts arrive with their decimal point already
// percent-encoded and pick up a second level of escaping here, which Cashew
// undoes in reverse.
func Link(txs []*domain.Transaction) (string, error) {
	body, err := json.Marshal(payload{Transactions: txs})
	if err != nil {
		return "", fmt.Errorf("cashew: encoding batch: %w", err)
	}
	return fmt.Sprintf("%s/addTransaction?JSON=%s", Route, url.QueryEscape(string(body))), nil
}

// DecorateAccounts fills the Cashew account name on records whose masked
// account number has a configured mapping. Unmapped numbers leave the field
// empty and Cashew falls back to its default account.
func DecorateAccounts(txs []*domain.Transaction, accounts map[string]string) {
	for _, tx := range txs {
		if name, ok := accounts[tx.MaskedAccount]; ok {
			tx.Account = name
		}
	}
}

// Messenger delivers deep links to a phone number through osascript.
type Messenger struct {
	Phone    string
	Accounts map[string]string
}

// NewMessenger creates a Messenger for the given destination phone and
// masked-account mapping.
func NewMessenger(phone string, accounts map[string]string) *Messenger {
	return &Messenger{Phone: phone, Accounts: accounts}
}

// Deliver sends the batch as a single deep link.
func (m *Messenger) Deliver(ctx context.Context, txs []*domain.Transaction) error {
	log := logger.FromContext(ctx)

	DecorateAccounts(txs, m.Accounts)

	link, err := Link(txs)
	if err != nil {
		return err
	}

	log.Info().Int("transactions", len(txs)).Str("phone", m.Phone).Msg("sending deep link over iMessage")

	cmd := exec.CommandContext(ctx, "osascript", scriptPath, m.Phone, link)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("cashew: osascript: %w: %s", err, out)
	}
	return nil
}
