// Package classify is the categorization oracle collaborator: it asks a
// Gemini model which spending category a merchant belongs to.
package classify

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for categorization.
const DefaultModelName = "gemini-2.5-flash"

// Gemini answers merchant categorization queries through the GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini classifier authenticated with the given API key.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("classify: create genai client: %w", err)
	}
	return &Gemini{client: client, model: DefaultModelName}, nil
}

// Classify asks the model to place a merchant into one of the given
// categories. The answer comes back as freeform text; the caller owns any
// cleanup beyond whitespace trimming.
func (g *Gemini) Classify(ctx context.Context, merchant string, categories []string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: classifyPrompt(merchant, categories)},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("classify: generate content for %q: %w", merchant, err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", fmt.Errorf("classify: empty response from model for %q", merchant)
	}
	return answer, nil
}

// classifyPrompt keeps the question short; the model only needs to pick a
// label from the closed list.
func classifyPrompt(merchant string, categories []string) string {
	return fmt.Sprintf(
		"%s purchase belong to: %s? Respond only by category.",
		merchant, strings.Join(categories, ", "),
	)
}
