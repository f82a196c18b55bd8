package translation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiTranslator translates with a Gemini model
type GeminiTranslator struct {
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a Gemini translator. An empty baseURL selects
// the public Gemini API.
func NewGeminiTranslator(ctx context.Context, apiKey, model, baseURL string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTranslator{model: model, client: client}, nil
}

// Translate implements Translator
func (t *GeminiTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	resp, err := t.client.Models.GenerateContent(ctx, t.model,
		genai.Text(prompt(text, fromLang, toLang)),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.3)})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	translation := cleanTranslation(resp.Text())
	if translation == "" {
		return "", fmt.Errorf("no translation returned")
	}
	return translation, nil
}

// Name implements Translator
func (t *GeminiTranslator) Name() string {
	return "gemini"
}
