package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const gmailUser = "me"

// ErrMalformedBody means a message was fetched but carries no decodable HTML
// body. This is a problem with the message, not the transport: callers can
// skip it and keep going.
var ErrMalformedBody = errors.New("malformed message body")

// Gmail is the concrete message source backed by the Gmail API.
type Gmail struct {
	svc *gmail.Service
}

// NewGmail creates a Gmail message source using the given token source.
func NewGmail(ctx context.Context, ts oauth2.TokenSource) (*Gmail, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("mailbox: creating gmail service: %w", err)
	}
	return &Gmail{svc: svc}, nil
}

// Search returns up to maxResults message ids matching the query, newest first.
func (g *Gmail) Search(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := g.svc.Users.Messages.List(gmailUser).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("mailbox: search %q: %w", query, describeAPIError(err))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Fetch retrieves a single message and decodes its HTML body.
func (g *Gmail) Fetch(ctx context.Context, id string) (*Message, error) {
	msg, err := g.svc.Users.Messages.Get(gmailUser, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("mailbox: fetch %s: %w", id, describeAPIError(err))
	}
	if msg.Payload == nil {
		return nil, fmt.Errorf("mailbox: fetch %s: %w: message has no payload", id, ErrMalformedBody)
	}

	headers := make([]Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		headers = append(headers, Header{Name: h.Name, Value: h.Value})
	}

	data := htmlBodyData(msg.Payload)
	if data == "" {
		return nil, fmt.Errorf("mailbox: fetch %s: %w: no HTML body part", id, ErrMalformedBody)
	}
	body, err := decodeBody(data)
	if err != nil {
		return nil, fmt.Errorf("mailbox: fetch %s: %w: decoding: %v", id, ErrMalformedBody, err)
	}

	return &Message{
		ID:      id,
		Headers: headers,
		Body:    body,
		SentAt:  time.UnixMilli(msg.InternalDate),
	}, nil
}

// htmlBodyData picks the body data for a payload. Alert emails usually carry
// the HTML directly in the top-level body; multipart messages keep it in a
// text/html part.
func htmlBodyData(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return payload.Body.Data
	}
	for _, part := range payload.Parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return part.Body.Data
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body encoding. The API strips the
// padding, but tolerate it in case it is present.
func decodeBody(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}

// describeAPIError surfaces the HTTP status of a Google API failure so run
// logs show whether a fetch died on quota, auth, or a missing message.
func describeAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("api error (HTTP %d): %w", gerr.Code, err)
	}
	return err
}
