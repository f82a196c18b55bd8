package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/connection"
)

// FakeConn is an in-memory connection. Tests push inbound events with
// Deliver and inspect outbound frames with Sent.
type FakeConn struct {
	mu      sync.Mutex
	state   connection.State
	sent    [][]byte
	sendErr error
	closed  bool

	events chan connection.Event
}

// NewFakeConn creates a fake connection in the given state
func NewFakeConn(state connection.State) *FakeConn {
	return &FakeConn{
		state:  state,
		events: make(chan connection.Event, 64),
	}
}

// Send records payload, or fails with ErrNotConnected unless open
func (c *FakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	if c.state != connection.StateOpen {
		return connection.ErrNotConnected
	}
	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

// State returns the fake state
func (c *FakeConn) State() connection.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState changes the state without emitting an event
func (c *FakeConn) SetState(state connection.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// FailSends makes every Send return err
func (c *FakeConn) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Events implements the session connection interface
func (c *FakeConn) Events() <-chan connection.Event {
	return c.events
}

// Deliver queues an inbound event
func (c *FakeConn) Deliver(ev connection.Event) {
	c.events <- ev
}

// Sent returns copies of all frames sent so far
func (c *FakeConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// Close moves to Closed and ends the event stream
func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.state = connection.StateClosed
	c.events <- connection.StateEvent(connection.StateClosed, nil)
	close(c.events)
	return nil
}

// Closed reports whether Close was called
func (c *FakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// FakePlayer records playback requests instead of playing anything
type FakePlayer struct {
	mu        sync.Mutex
	Played    []string
	Playbacks []*FakePlayback
	Err       error
}

// Play implements audio.Player
func (p *FakePlayer) Play(path string) (audio.Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	pb := &FakePlayback{done: make(chan struct{})}
	p.Played = append(p.Played, path)
	p.Playbacks = append(p.Playbacks, pb)
	return pb, nil
}

// Count returns how many times Play succeeded
func (p *FakePlayer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Played)
}

// FakePlayback never finishes on its own
type FakePlayback struct {
	mu      sync.Mutex
	done    chan struct{}
	stopped bool
}

// Stop implements audio.Playback
func (p *FakePlayback) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.stopped = true
		close(p.done)
	}
	return nil
}

// Done implements audio.Playback
func (p *FakePlayback) Done() <-chan struct{} {
	return p.done
}

// Stopped reports whether Stop was called
func (p *FakePlayback) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// MockTranslator mocks a translation backend
type MockTranslator struct {
	mu           sync.Mutex
	Translations map[string]string
	Errors       map[string]error
	Calls        []string
}

// Translate returns the configured translation, or a mock one
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("Translate: %s (%s->%s)", text, fromLang, toLang))

	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("mock translation of %s", text), nil
}

// Name identifies the mock
func (m *MockTranslator) Name() string {
	return "mock"
}

// CallCount returns how many translations were requested
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSynthesizer mocks a speech synthesizer
type MockSynthesizer struct {
	mu    sync.Mutex
	Audio []byte
	Err   error
	Calls []string
}

// Synthesize returns the configured audio (sample mp3 by default)
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("TTS: %s (%s)", text, lang))
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Audio != nil {
		return m.Audio, nil
	}
	return SampleMP3(), nil
}

// Name identifies the mock
func (m *MockSynthesizer) Name() string {
	return "mock"
}

// IsAvailable always succeeds
func (m *MockSynthesizer) IsAvailable() error {
	return nil
}

// SampleMP3 returns a minimal valid MPEG1 layer III frame header
func SampleMP3() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
