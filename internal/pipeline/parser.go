package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dvloznov/cashew-autofill/internal/domain"
	"github.com/dvloznov/cashew-autofill/internal/logger"
	"golang.org/x/net/html"
)

const (
	// scotiaMarker opens the paragraph that carries the transaction details.
	scotiaMarker = "There was an authorization"

	// dateLayout is the timestamp format Cashew expects.
	dateLayout = "01/02/2006 15:04:05"
)

// scotiaPattern captures, in order: the dollar amount, the merchant name, the
// masked account number, and the 12-hour clock time of the authorization.
var scotiaPattern = regexp.MustCompile(`(\$\d+\.\d{2}) at (.+) on account (\d{4}\*+\d{3}\*+) at (\d{1,2}:\d{2} [ap]m)`)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// ParseStatement extracts a transaction from a decoded alert body, dispatching
// on the originating bank. A nil record with a nil error means the message
// carries no parseable statement; the caller logs and moves on. Only bank
// variants with a parser produce records; the rest warn and return nothing.
func ParseStatement(ctx context.Context, bank domain.Bank, body []byte, sentAt time.Time, cache *CategoryCache) (*domain.Transaction, error) {
	log := logger.FromContext(ctx)

	switch bank {
	case domain.BankScotiabank:
		return parseScotiaStatement(ctx, body, sentAt, cache)
	case domain.BankAmex, domain.BankCIBC, domain.BankRBC:
		log.Warn().Stringer("bank", bank).Msg("no statement parser implemented for this bank")
		return nil, nil
	default:
		log.Warn().Stringer("bank", bank).Msg("unrecognized bank variant")
		return nil, nil
	}
}

func parseScotiaStatement(ctx context.Context, body []byte, sentAt time.Time, cache *CategoryCache) (*domain.Transaction, error) {
	log := logger.FromContext(ctx)

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parseScotiaStatement: parsing html: %w", err)
	}

	text := findMarkerParagraph(doc)
	if text == "" {
		log.Warn().Msg("no authorization paragraph in message body")
		return nil, nil
	}

	// Scotiabank markup pads single-digit hours with an extra space instead
	// of shrinking the text, so collapse all whitespace runs first.
	text = whitespaceRuns.ReplaceAllString(text, " ")

	m := scotiaPattern.FindStringSubmatch(text)
	if m == nil {
		log.Warn().Str("paragraph", text).Msg("statement text does not match the expected shape")
		return nil, nil
	}

	clock := m[4]
	// A 12-hour clock has no zero hour, but alerts can still say "0:53 am".
	if strings.HasPrefix(clock, "0:") {
		clock = "12" + clock[1:]
	}

	category, err := cache.Resolve(ctx, m[2])
	if err != nil {
		return nil, fmt.Errorf("parseScotiaStatement: %w", err)
	}

	return &domain.Transaction{
		Date:          statementDate(clock, sentAt),
		Amount:        encodeAmount(m[1]),
		Title:         m[2],
		Category:      category,
		MaskedAccount: m[3],
	}, nil
}

// findMarkerParagraph returns the text of the first <p> element whose content
// begins with the marker phrase, or "" when there is none.
func findMarkerParagraph(doc *html.Node) string {
	var found string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "p" {
			if t := nodeText(n); strings.HasPrefix(t, scotiaMarker) {
				found = t
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// statementDate merges the clock time from the statement with the calendar
// day the message was sent. When the clock does not parse, the full sent
// timestamp stands in.
func statementDate(clock string, sentAt time.Time) string {
	t, err := time.Parse("3:04 pm", clock)
	if err != nil {
		return sentAt.Format(dateLayout)
	}
	merged := time.Date(sentAt.Year(), sentAt.Month(), sentAt.Day(), t.Hour(), t.Minute(), 0, 0, sentAt.Location())
	return merged.Format(dateLayout)
}

// encodeAmount turns "$43.62" into "-43%2E62": purchases are debits, and the
// decimal point is percent-escaped by hand because url.QueryEscape leaves "."
// alone and Cashew's deep link cuts the tappable URL at a literal period.
func encodeAmount(dollar string) string {
	return "-" + strings.ReplaceAll(strings.TrimPrefix(dollar, "$"), ".", "%2E")
}
