package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini implements Model over the Gemini API. The client is constructed
// per call rather than kept as a long-lived singleton.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini creates a Gemini-backed translation model.
func NewGemini(apiKey, model string) *Gemini {
	return &Gemini{apiKey: apiKey, model: model}
}

// Complete sends the prompt and returns the model's raw text reply.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("translate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("translate: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("translate: empty response from model")
	}
	return text, nil
}
