package audio

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Config controls the handler
type Config struct {
	Dir      string // directory for temp files; empty means os.TempDir()
	AutoPlay bool   // start playback as soon as a reply arrives
}

// Handler converts binary replies into handles and keeps at most one alive
type Handler struct {
	config Config
	player Player
	log    zerolog.Logger

	mu      sync.Mutex
	current *Handle
	live    int
}

// NewHandler creates a handler. player may be nil when autoplay is off.
func NewHandler(config Config, player Player, log zerolog.Logger) *Handler {
	return &Handler{
		config: config,
		player: player,
		log:    log.With().Str("component", "audio").Logger(),
	}
}

// OnBinaryFrame validates data, stores it as a new handle and releases the
// previous handle. With autoplay on, playback starts right away; a player
// failure is logged but the handle is still returned.
func (h *Handler) OnBinaryFrame(data []byte) (*Handle, error) {
	if err := ValidateMP3(data); err != nil {
		return nil, err
	}

	h.mu.Lock()
	previous := h.current
	h.current = nil
	h.mu.Unlock()

	if previous != nil {
		if err := previous.Release(); err != nil {
			h.log.Warn().Err(err).Str("audio", previous.ID).Msg("failed to release previous audio")
		}
	}

	path, err := h.writeTemp(data)
	if err != nil {
		return nil, err
	}

	handle := newHandle(path, len(data), h.player, h.released)

	h.mu.Lock()
	h.current = handle
	h.live++
	h.mu.Unlock()

	h.log.Debug().Str("audio", handle.ID).Int("bytes", len(data)).Msg("audio received")

	if h.config.AutoPlay {
		if err := handle.Play(); err != nil {
			h.log.Warn().Err(err).Str("audio", handle.ID).Msg("autoplay failed")
		}
	}

	return handle, nil
}

// Current returns the live handle, if any
func (h *Handler) Current() *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Live returns how many handles have not been released yet
func (h *Handler) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Close releases the live handle
func (h *Handler) Close() error {
	h.mu.Lock()
	current := h.current
	h.current = nil
	h.mu.Unlock()

	if current == nil {
		return nil
	}
	return current.Release()
}

func (h *Handler) released(handle *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.live--
	if h.current == handle {
		h.current = nil
	}
}

func (h *Handler) writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp(h.config.Dir, "translink-*.mp3")
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return f.Name(), nil
}
