package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/connection"
)

// Conn is the connection a session talks over
type Conn interface {
	Send(payload []byte) error
	State() connection.State
	Events() <-chan connection.Event
	Close() error
}

// AudioSink turns binary replies into handles
type AudioSink interface {
	OnBinaryFrame(data []byte) (*audio.Handle, error)
	Close() error
}

// Manager is one translation session. All transitions run under a single
// lock, so each event is processed to completion before the next.
type Manager struct {
	conn  Conn
	audio AudioSink
	log   zerolog.Logger

	mu        sync.Mutex
	phase     Phase
	result    Result
	connState connection.State
	inFlight  *Request
	closed    bool

	changes chan struct{}
}

// NewManager creates a session over conn
func NewManager(conn Conn, sink AudioSink, log zerolog.Logger) *Manager {
	return &Manager{
		conn:      conn,
		audio:     sink,
		log:       log.With().Str("component", "session").Logger(),
		phase:     PhaseIdle,
		connState: conn.State(),
		changes:   make(chan struct{}, 1),
	}
}

// Submit sends one translation request. It fails with ErrBusy while a
// request is pending. A blank sentence settles immediately with an error
// result and sends nothing.
func (m *Manager) Submit(sentence, from, to string, mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhasePending {
		return ErrBusy
	}

	if strings.TrimSpace(sentence) == "" {
		m.settle(ErrorResult(EmptySentenceMessage, ErrValidation))
		return fmt.Errorf("%w: empty sentence", ErrValidation)
	}
	if !mode.Valid() {
		msg := fmt.Sprintf("Unknown mode %q.", mode)
		m.settle(ErrorResult(msg, ErrValidation))
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, mode)
	}

	req := &Request{
		Sentence:         sentence,
		FromLanguageCode: from,
		ToLanguageCode:   to,
		Mode:             mode,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		m.settle(ErrorResult("Could not encode request.", err))
		return fmt.Errorf("failed to encode request: %w", err)
	}

	// The previous result is invalid from here on
	m.clearResult()
	m.phase = PhasePending
	m.inFlight = req
	m.log.Debug().Str("mode", string(mode)).Str("from", from).Str("to", to).Msg("submitting")

	if err := m.conn.Send(payload); err != nil {
		m.log.Warn().Err(err).Msg("send failed")
		message := "Could not send request: " + err.Error()
		if errors.Is(err, connection.ErrNotConnected) {
			message = "Not connected to the translation server."
		}
		m.settle(ErrorResult(message, err))
		return err
	}

	m.notify()
	return nil
}

// HandleEvent applies one connection event. Frames that arrive while no
// request is pending are dropped.
func (m *Manager) HandleEvent(ev connection.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev.Kind {
	case connection.EventState:
		m.handleState(ev.State, ev.Err)
	case connection.EventFrame:
		m.handleFrame(ev.Frame)
	}
}

func (m *Manager) handleState(state connection.State, cause error) {
	m.connState = state
	m.log.Debug().Str("connection", state.String()).Msg("connection state changed")

	if state == connection.StateClosed && m.phase == PhasePending {
		err := ErrConnectionClosed
		if cause != nil {
			err = fmt.Errorf("%w: %v", ErrConnectionClosed, cause)
		}
		m.settle(ErrorResult("connection closed", err))
		return
	}
	m.notify()
}

func (m *Manager) handleFrame(frame connection.Frame) {
	if m.phase != PhasePending || m.closed {
		m.log.Debug().Str("frame", frame.Type.String()).Str("phase", m.phase.String()).Msg("ignoring unsolicited frame")
		return
	}

	switch frame.Type {
	case connection.FrameText:
		m.settle(TextResult(string(frame.Data)))

	case connection.FrameBinary:
		handle, err := m.audio.OnBinaryFrame(frame.Data)
		if err != nil {
			m.log.Warn().Err(err).Int("bytes", len(frame.Data)).Msg("bad audio reply")
			m.settle(ErrorResult("Could not play audio: "+err.Error(), err))
			return
		}
		m.settle(AudioResult(handle))
	}
}

// Run feeds connection events into the session until the stream ends or
// ctx is cancelled
func (m *Manager) Run(ctx context.Context) error {
	events := m.conn.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.HandleEvent(ev)
		}
	}
}

// Reset re-arms a settled session, releasing the current result
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhasePending:
		return ErrBusy
	case PhaseSettled:
		m.clearResult()
		m.phase = PhaseIdle
		m.notify()
	}
	return nil
}

// Snapshot returns the current state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Phase:      m.phase,
		Connection: m.connState,
	}
	if m.phase == PhaseSettled {
		s.Result = m.result
	}
	if m.inFlight != nil {
		req := *m.inFlight
		s.Request = &req
	}
	return s
}

// Changes signals state changes. Signals coalesce, so a slow reader sees
// at least one signal after the latest change; read Snapshot for details.
func (m *Manager) Changes() <-chan struct{} {
	return m.changes
}

// Wait blocks until no request is pending and returns that state
func (m *Manager) Wait(ctx context.Context) (State, error) {
	for {
		s := m.Snapshot()
		if s.Phase != PhasePending {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-m.changes:
		}
	}
}

// Close ends the session: the connection is closed, a pending request
// settles with a connection closed error and live audio is released
func (m *Manager) Close() error {
	err := m.conn.Close()

	m.mu.Lock()
	m.closed = true
	m.connState = connection.StateClosed
	if m.phase == PhasePending {
		m.settle(ErrorResult("connection closed", ErrConnectionClosed))
	} else if m.result.Kind == ResultAudio {
		m.clearResult()
		m.phase = PhaseIdle
		m.notify()
	}
	m.mu.Unlock()

	if m.audio != nil {
		if aerr := m.audio.Close(); aerr != nil && err == nil {
			err = aerr
		}
	}
	return err
}

// settle makes r the current result. Must hold m.mu.
func (m *Manager) settle(r Result) {
	if m.result.Kind == ResultAudio && m.result.Audio != nil && m.result.Audio != r.Audio {
		if err := m.result.Audio.Release(); err != nil {
			m.log.Warn().Err(err).Msg("failed to release audio")
		}
	}
	m.result = r
	m.phase = PhaseSettled
	m.inFlight = nil
	m.log.Debug().Str("result", r.Kind.String()).Msg("settled")
	m.notify()
}

// clearResult drops and releases the current result. Must hold m.mu.
func (m *Manager) clearResult() {
	if m.result.Kind == ResultAudio && m.result.Audio != nil {
		if err := m.result.Audio.Release(); err != nil {
			m.log.Warn().Err(err).Msg("failed to release audio")
		}
	}
	m.result = Result{}
}

func (m *Manager) notify() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}
