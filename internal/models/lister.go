package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// maxChatModels caps the chat list; longer lists are narrowed to gpt-4 class models
const maxChatModels = 10

// Categories holds model ids by use
type Categories struct {
	Speech []string
	Chat   []string
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL uses the OpenAI API.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// Categorize sorts model ids into speech and chat models; others are dropped
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(id, "audio"), strings.Contains(id, "realtime"), strings.Contains(id, "transcribe"):
			// not usable for either job
		case strings.Contains(id, "gpt"), strings.Contains(id, "chat"):
			c.Chat = append(c.Chat, id)
		}
	}
	sort.Strings(c.Speech)
	sort.Strings(c.Chat)
	return c
}

// Fetch returns the models available to the API key
func (l *Lister) Fetch(ctx context.Context) (Categories, error) {
	if l.apiKey == "" {
		return Categories{}, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure server.openai_key in .translink.yaml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return Categories{}, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		ids = append(ids, model.ID)
	}
	return Categorize(ids), nil
}

// ListAvailableModels prints the available models to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	c, err := l.Fetch(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available OpenAI Models:")
	fmt.Fprintln(w, "\nSpeech Models (--tts-model):")
	if len(c.Speech) == 0 {
		fmt.Fprintln(w, "  No speech models found")
	}
	for _, model := range c.Speech {
		fmt.Fprintf(w, "  %s\n", model)
	}

	fmt.Fprintln(w, "\nTranslation Models (--openai-model):")
	if len(c.Chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
		return nil
	}
	if len(c.Chat) <= maxChatModels {
		for _, model := range c.Chat {
			fmt.Fprintf(w, "  %s\n", model)
		}
		return nil
	}

	shown := 0
	for _, model := range c.Chat {
		if strings.Contains(model, "gpt-4") {
			fmt.Fprintf(w, "  %s\n", model)
			shown++
		}
	}
	fmt.Fprintf(w, "  ... and %d more models\n", len(c.Chat)-shown)
	return nil
}
