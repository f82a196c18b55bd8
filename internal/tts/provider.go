package tts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Synthesizer turns text in a language into mp3 audio
type Synthesizer interface {
	// Synthesize returns mp3 bytes for text spoken in lang (BCP 47 code)
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for speech providers
type Config struct {
	Provider string // "openai", "espeak" or "auto" (openai with espeak fallback)

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIBaseURL     string  // empty means the public API
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // optional override of the per-language voice instruction

	// On-disk cache of synthesized audio
	CacheDir    string
	EnableCache bool

	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		OpenAIModel: "gpt-4o-mini-tts",
		OpenAIVoice: "alloy",
		OpenAISpeed: 1.0,
		ESpeak:      DefaultESpeakConfig(),
	}
}

// NewProvider creates the synthesizer selected by config.Provider
func NewProvider(config *Config, log zerolog.Logger) (Synthesizer, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "espeak":
		return NewESpeakProvider(config.ESpeak)

	case "auto":
		fallback, ferr := NewESpeakProvider(config.ESpeak)
		if config.OpenAIKey == "" {
			if ferr != nil {
				return nil, fmt.Errorf("no speech provider available: OpenAI API key missing and %v", ferr)
			}
			return fallback, nil
		}
		primary, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		if ferr != nil {
			log.Warn().Err(ferr).Msg("espeak fallback unavailable")
			return primary, nil
		}
		return NewProviderWithFallback(primary, fallback, log), nil

	default:
		return nil, fmt.Errorf("unknown speech provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Synthesizer
	fallback Synthesizer
	log      zerolog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Synthesizer, log zerolog.Logger) *ProviderWithFallback {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      log.With().Str("component", "tts").Logger(),
	}
}

// Synthesize tries the primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	data, err := p.primary.Synthesize(ctx, text, lang)
	if err == nil {
		return data, nil
	}

	p.log.Warn().Err(err).
		Str("primary", p.primary.Name()).
		Str("fallback", p.fallback.Name()).
		Msg("primary speech provider failed, falling back")

	return p.fallback.Synthesize(ctx, text, lang)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
