package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/mailbox"
)

// IdentifyBank resolves which configured bank sent a message. The first
// "From" header decides the outcome. Addresses match as substrings because
// alert senders carry a display name, e.g.
// "Scotiabank Alerts <infoalerts@scotiabank.com>".
func IdentifyBank(headers []mailbox.Header, banks map[domain.Bank]string) (domain.Bank, error) {
	for _, h := range headers {
		if h.Name != "From" {
			continue
		}
		for _, b := range domain.Banks {
			addr := banks[b]
			if addr != "" && strings.Contains(h.Value, addr) {
				return b, nil
			}
		}
		return domain.BankUnknown, fmt.Errorf("identifyBank: from %q: %w", h.Value, ErrUnknownSender)
	}
	return domain.BankUnknown, fmt.Errorf("identifyBank: no From header: %w", ErrUnknownSender)
}
