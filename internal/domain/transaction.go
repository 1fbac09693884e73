package domain

// Transaction is one record in the shape the Cashew deep link accepts.
// Field names mirror the addTransaction JSON payload.
type Transaction struct {
	// Date is formatted as "MM/dd/yyyy HH:mm:ss".
	Date string `json:"date"`

	// Amount is a signed decimal string; purchases are negative. The decimal
	// point is carried percent-encoded as "%2E" because Cashew's deep link
	// cuts the tappable URL at a literal period.
	Amount string `json:"amount"`

	// Title is the merchant name as it appears in the statement.
	Title string `json:"title"`

	Category string `json:"category"`

	// Account is the Cashew account name, filled in at delivery time when the
	// masked account number has a configured mapping.
	Account string `json:"account,omitempty"`

	// MaskedAccount is the obfuscated account number captured from the
	// statement (e.g. "1234**123***"). It is never sent downstream.
	MaskedAccount string `json:"-"`
}
