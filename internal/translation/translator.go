package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/translink/internal/breaker"
	"codeberg.org/snonux/translink/internal/catalog"
)

// Translator translates text between two languages given as BCP 47 codes
type Translator interface {
	Translate(ctx context.Context, text, fromLang, toLang string) (string, error)
	Name() string
}

// Config selects and configures a translation backend
type Config struct {
	Backend       string // "openai" or "gemini"
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string
}

// NewTranslator creates the backend named in config. The backend is
// guarded by a circuit breaker and its results are cached in memory.
func NewTranslator(ctx context.Context, config Config) (Translator, error) {
	var (
		t   Translator
		err error
	)

	switch config.Backend {
	case "", "openai":
		t, err = NewOpenAITranslator(config.OpenAIKey, config.OpenAIModel, config.OpenAIBaseURL)
	case "gemini":
		t, err = NewGeminiTranslator(ctx, config.GeminiKey, config.GeminiModel, config.GeminiBaseURL)
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", config.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewCachingTranslator(NewGuardedTranslator(t)), nil
}

// prompt builds the instruction sent to chat style models
func prompt(text, fromLang, toLang string) string {
	from := languageLabel(fromLang)
	to := languageLabel(toLang)
	return fmt.Sprintf("Translate the following %s text to %s. Respond with only the translation, nothing else.\n\n%s", from, to, text)
}

func languageLabel(code string) string {
	if name := catalog.DisplayName(code); name != "" {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// cleanTranslation strips whitespace and wrapping quotes models like to add
func cleanTranslation(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// GuardedTranslator fails fast once its backend keeps failing
type GuardedTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

// NewGuardedTranslator wraps t in a circuit breaker
func NewGuardedTranslator(t Translator) *GuardedTranslator {
	return &GuardedTranslator{
		next: t,
		cb:   gobreaker.NewCircuitBreaker(breaker.Settings("translate-" + t.Name())),
	}
}

// Translate implements Translator
func (g *GuardedTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Translate(ctx, text, fromLang, toLang)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Name implements Translator
func (g *GuardedTranslator) Name() string {
	return g.next.Name()
}

// TranslationCache stores translations in memory
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[cacheKey]string
}

type cacheKey struct {
	text, from, to string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[cacheKey]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(text, fromLang, toLang, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[cacheKey{text, fromLang, toLang}] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(text, fromLang, toLang string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[cacheKey{text, fromLang, toLang}]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.translations)
}

// CachingTranslator answers repeated requests from a TranslationCache
type CachingTranslator struct {
	next  Translator
	cache *TranslationCache
}

// NewCachingTranslator wraps t with an in-memory cache
func NewCachingTranslator(t Translator) *CachingTranslator {
	return &CachingTranslator{next: t, cache: NewTranslationCache()}
}

// Translate implements Translator
func (c *CachingTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	if translation, ok := c.cache.Get(text, fromLang, toLang); ok {
		return translation, nil
	}

	translation, err := c.next.Translate(ctx, text, fromLang, toLang)
	if err != nil {
		return "", err
	}
	c.cache.Add(text, fromLang, toLang, translation)
	return translation, nil
}

// Name implements Translator
func (c *CachingTranslator) Name() string {
	return c.next.Name()
}
