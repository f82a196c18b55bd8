package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/translink/internal"
	"codeberg.org/snonux/translink/internal/catalog"
	"codeberg.org/snonux/translink/internal/translation"
	"codeberg.org/snonux/translink/internal/tts"
)

// Config holds server settings
type Config struct {
	Listen      string   // address to listen on, e.g. ":9000"
	DefaultFrom string   // source language when a request names none
	DefaultTo   string   // target language when a request names none
	Languages   []string // codes offered by GET /languages
}

// DefaultConfig returns default server settings
func DefaultConfig() Config {
	return Config{
		Listen:      ":9000",
		DefaultFrom: "en",
		DefaultTo:   "en",
		Languages:   []string{"en", "tr", "de", "fr", "es", "it", "pt", "bg", "ru", "ja", "zh"},
	}
}

// Server translates requests with a Translator and speaks the results
// with a Synthesizer
type Server struct {
	config     Config
	translator translation.Translator
	synth      tts.Synthesizer
	catalog    catalog.Catalog
	log        zerolog.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a new server. synth may be nil, in which case speech
// requests are answered with an error.
func New(config Config, translator translation.Translator, synth tts.Synthesizer, log zerolog.Logger) *Server {
	return &Server{
		config:     config,
		translator: translator,
		synth:      synth,
		catalog:    catalog.FromCodes(config.Languages),
		log:        log.With().Str("component", "server").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/languages", s.handleLanguages)
	mux.HandleFunc("/translate", s.handleTranslate)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info().
		Str("addr", s.config.Listen).
		Str("translator", s.translator.Name()).
		Int("languages", len(s.catalog)).
		Msg("starting translation server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":     "ok",
		"version":    internal.Version,
		"translator": s.translator.Name(),
		"speech":     s.synth != nil,
	})
}

// handleLanguages returns the language catalog
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.catalog)
}

// handleTranslate is the legacy plain text endpoint
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	sentence := strings.TrimSpace(q.Get("sentence"))
	if sentence == "" {
		http.Error(w, "sentence is required", http.StatusBadRequest)
		return
	}

	from, to, err := s.languages(q.Get("from"), q.Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	translated, err := s.translator.Translate(r.Context(), sentence, from, to)
	if err != nil {
		s.log.Error().Err(err).Str("from", from).Str("to", to).Msg("legacy translation failed")
		http.Error(w, "translation failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(translated))
}

// languages normalizes the requested codes and fills in the defaults
func (s *Server) languages(from, to string) (string, string, error) {
	from, err := catalog.Normalize(from)
	if err != nil {
		return "", "", err
	}
	to, err = catalog.Normalize(to)
	if err != nil {
		return "", "", err
	}
	if from == "" {
		from = s.config.DefaultFrom
	}
	if to == "" {
		to = s.config.DefaultTo
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
