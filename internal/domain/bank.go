package domain

// Bank enumerates the alert senders the parser knows about. Adding a bank
// means adding a variant here, its alert address to the configuration
// defaults, and a case in the statement parser.
type Bank int

const (
	BankUnknown Bank = iota
	BankScotiabank
	BankAmex
	BankCIBC
	BankRBC
)

// Banks lists the known variants in a fixed order so that sender matching is
// deterministic when more than one bank could match the same header.
var Banks = []Bank{BankScotiabank, BankAmex, BankCIBC, BankRBC}

func (b Bank) String() string {
	switch b {
	case BankScotiabank:
		return "SCOTIABANK"
	case BankAmex:
		return "AMEX"
	case BankCIBC:
		return "CIBC"
	case BankRBC:
		return "RBC"
	default:
		return "UNKNOWN"
	}
}
