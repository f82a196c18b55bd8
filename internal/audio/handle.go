package audio

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Handle is a playable audio resource backed by a temp file. It must be
// released exactly once by its owner; Release is idempotent.
type Handle struct {
	ID   string
	Path string
	Size int

	player Player

	mu        sync.Mutex
	playback  Playback
	released  bool
	onRelease func(*Handle)
}

func newHandle(path string, size int, player Player, onRelease func(*Handle)) *Handle {
	return &Handle{
		ID:        uuid.NewString(),
		Path:      path,
		Size:      size,
		player:    player,
		onRelease: onRelease,
	}
}

// Play starts (or restarts) playback
func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return fmt.Errorf("audio %s already released", h.ID)
	}
	if h.player == nil {
		return fmt.Errorf("no audio player configured")
	}
	if h.playback != nil {
		h.playback.Stop()
		h.playback = nil
	}

	pb, err := h.player.Play(h.Path)
	if err != nil {
		return err
	}
	h.playback = pb
	return nil
}

// Playing reports whether playback is currently running
func (h *Handle) Playing() bool {
	h.mu.Lock()
	pb := h.playback
	h.mu.Unlock()

	if pb == nil {
		return false
	}
	select {
	case <-pb.Done():
		return false
	default:
		return true
	}
}

// Wait blocks until the current playback finishes or ctx is done. It
// returns immediately when nothing is playing.
func (h *Handle) Wait(ctx context.Context) error {
	h.mu.Lock()
	pb := h.playback
	h.mu.Unlock()

	if pb == nil {
		return nil
	}
	select {
	case <-pb.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Released reports whether Release was called
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release stops playback and deletes the backing file
func (h *Handle) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	pb := h.playback
	h.playback = nil
	onRelease := h.onRelease
	h.mu.Unlock()

	if pb != nil {
		pb.Stop()
	}
	if onRelease != nil {
		onRelease(h)
	}

	if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}
	return nil
}
