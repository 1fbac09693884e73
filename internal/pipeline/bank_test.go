package pipeline

import (
	"errors"
	"testing"

	"github.com/dvloznov/cashew-autofill/internal/config"
	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/mailbox"
)

func TestIdentifyBank(t *testing.T) {
	banks := config.DefaultBanks()

	tests := []struct {
		name    string
		headers []mailbox.Header
		want    domain.Bank
		wantErr bool
	}{
		{
			name: "address inside a display-name header",
			headers: []mailbox.Header{
				{Name: "Subject", Value: "Transaction Approved"},
				{Name: "From", Value: "Scotiabank Alerts <infoalerts@scotiabank.com>"},
			},
			want: domain.BankScotiabank,
		},
		{
			name: "bare address",
			headers: []mailbox.Header{
				{Name: "From", Value: "infoalerts@scotiabank.com"},
			},
			want: domain.BankScotiabank,
		},
		{
			name: "first From header decides even when a later one would match",
			headers: []mailbox.Header{
				{Name: "From", Value: "noreply@example.com"},
				{Name: "From", Value: "infoalerts@scotiabank.com"},
			},
			wantErr: true,
		},
		{
			name: "no From header",
			headers: []mailbox.Header{
				{Name: "To", Value: "me@example.com"},
			},
			wantErr: true,
		},
		{
			name:    "no headers at all",
			headers: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IdentifyBank(tt.headers, banks)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSender) {
					t.Errorf("IdentifyBank() error = %v, want ErrUnknownSender", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("IdentifyBank() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IdentifyBank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentifyBank_EmptyAddressNeverMatches(t *testing.T) {
	// Every string contains the empty string, so placeholder banks without a
	// configured address must be excluded from matching.
	banks := map[domain.Bank]string{
		domain.BankScotiabank: "",
		domain.BankAmex:       "",
	}

	_, err := IdentifyBank([]mailbox.Header{{Name: "From", Value: "anyone@example.com"}}, banks)
	if !errors.Is(err, ErrUnknownSender) {
		t.Errorf("IdentifyBank() error = %v, want ErrUnknownSender", err)
	}
}
