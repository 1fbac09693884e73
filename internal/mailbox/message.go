// Package mailbox is the message-source collaborator: it searches the Gmail
// inbox for bank alert emails and fetches them with their bodies decoded.
package mailbox

import "time"

// Header is one name/value pair from a message payload.
type Header struct {
	Name  string
	Value string
}

// Message is a fetched alert email with its HTML body already decoded from
// the base64url wire form.
type Message struct {
	ID      string
	Headers []Header
	Body    []byte
	SentAt  time.Time
}
