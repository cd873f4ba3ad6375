// Package gemini adapts the Google Gemini API to the lookup.Model interface
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/sig-0/bobvalue/lookup"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-2.0-flash"

var (
	errMissingAPIKey = errors.New("missing Gemini API key")
	errNoCandidates  = errors.New("model returned no text")
)

// rateSchema constrains the reply to {"exchangeRate": <number>}
var rateSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		lookup.RateField: {
			Type:        genai.TypeNumber,
			Description: "The current official BOB/USDT exchange rate (BOB per 1 USDT)",
		},
	},
	Required: []string{lookup.RateField},
}

// Model queries a single Gemini model
type Model struct {
	client *genai.Client
	name   string
}

// New creates a new Gemini-backed model
func New(ctx context.Context, apiKey, name string) (*Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errMissingAPIKey
	}

	if name == "" {
		name = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}

	return &Model{
		client: client,
		name:   name,
	}, nil
}

// Name returns the source name for lookup results
func (m *Model) Name() string {
	return "gemini/" + m.name
}

func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(
		ctx,
		m.name,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   rateSchema,
		},
	)
	if err != nil {
		return "", fmt.Errorf("unable to generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errNoCandidates
	}

	return text, nil
}
