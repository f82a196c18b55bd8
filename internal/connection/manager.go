package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrNotConnected is returned by Send when the connection is not open
var ErrNotConnected = errors.New("not connected")

const (
	writeWait    = 10 * time.Second
	closeWait    = 2 * time.Second
	eventBacklog = 64
)

// Manager owns one websocket to a fixed endpoint. Its lifecycle is
// Connecting -> Open -> Closed; Closed is terminal.
type Manager struct {
	endpoint string
	dialer   *websocket.Dialer
	header   http.Header
	log      zerolog.Logger

	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	closing bool

	writeMu sync.Mutex

	events   chan Event
	stop     chan struct{} // closed by Close; unblocks a stalled reader
	done     chan struct{} // closed once the final event was emitted
	stopOnce sync.Once
}

// NewManager creates a manager for endpoint in the Connecting state
func NewManager(endpoint string, log zerolog.Logger) *Manager {
	return &Manager{
		endpoint: endpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		header:   http.Header{},
		log:      log.With().Str("component", "connection").Logger(),
		state:    StateConnecting,
		events:   make(chan Event, eventBacklog),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Endpoint returns the URL this manager dials
func (m *Manager) Endpoint() string {
	return m.endpoint
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Events returns the inbound event stream. The last event is the
// transition to StateClosed, after which the channel is closed.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Connect dials the endpoint. On failure the manager is Closed.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateConnecting {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("cannot connect from state %s", state)
	}
	m.mu.Unlock()

	m.log.Debug().Str("endpoint", m.endpoint).Msg("dialing")
	conn, _, err := m.dialer.DialContext(ctx, m.endpoint, m.header)
	if err != nil {
		err = fmt.Errorf("dial %s: %w", m.endpoint, err)
		m.finish(err)
		return err
	}

	m.mu.Lock()
	if m.closing {
		// Close() raced with the dial
		m.mu.Unlock()
		conn.Close()
		m.finish(nil)
		return ErrNotConnected
	}
	m.conn = conn
	m.state = StateOpen
	m.mu.Unlock()

	m.log.Info().Str("endpoint", m.endpoint).Msg("connected")
	m.emit(StateEvent(StateOpen, nil))

	go m.readLoop(conn)
	return nil
}

// Send writes one text frame. It fails with ErrNotConnected unless Open.
func (m *Manager) Send(payload []byte) error {
	m.mu.Lock()
	if m.state != StateOpen || m.closing {
		m.mu.Unlock()
		return ErrNotConnected
	}
	conn := m.conn
	m.mu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	m.log.Debug().Int("bytes", len(payload)).Msg("frame sent")
	return nil
}

// Close performs the close handshake and waits for the reader to stop.
// Frames not yet consumed when Close is called are dropped, so after it
// returns the stream only holds state events ending with StateClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		<-m.done
		return nil
	}
	m.closing = true
	close(m.stop)
	conn := m.conn
	state := m.state
	m.mu.Unlock()

	if state == StateConnecting && conn == nil {
		// Never dialed (or the dial is still running and will see closing)
		m.finish(nil)
		return nil
	}
	if conn == nil {
		<-m.done
		return nil
	}

	m.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	m.writeMu.Unlock()

	// Wait briefly for the peer's close reply, then force the socket shut
	select {
	case <-m.done:
	case <-time.After(closeWait):
		conn.Close()
		<-m.done
	}

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("close handshake: %w", err)
	}
	return nil
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	var cause error
	defer func() {
		conn.Close()
		m.finish(cause)
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !m.isClosing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				cause = err
				m.log.Warn().Err(err).Msg("connection lost")
			} else {
				m.log.Info().Msg("connection closed")
			}
			return
		}

		if m.isClosing() {
			// Frames racing with Close are dropped
			continue
		}

		switch msgType {
		case websocket.TextMessage:
			m.emit(FrameEvent(FrameText, data))
		case websocket.BinaryMessage:
			m.emit(FrameEvent(FrameBinary, data))
		}
	}
}

func (m *Manager) isClosing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closing
}

// finish moves to Closed, emits the final event and closes the stream
func (m *Manager) finish(cause error) {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.state = StateClosed
		m.conn = nil
		closing := m.closing
		m.mu.Unlock()

		if closing {
			m.dropFrames()
		}
		m.emit(StateEvent(StateClosed, cause))
		close(m.events)
		close(m.done)
	})
}

// dropFrames discards unread frames from the backlog, keeping state
// events in order. Only called once the reader has stopped.
func (m *Manager) dropFrames() {
	var keep []Event
	dropped := 0
drain:
	for {
		select {
		case ev := <-m.events:
			if ev.Kind == EventFrame {
				dropped++
			} else {
				keep = append(keep, ev)
			}
		default:
			break drain
		}
	}
	for _, ev := range keep {
		m.emit(ev)
	}
	if dropped > 0 {
		m.log.Debug().Int("frames", dropped).Msg("dropped unread frames on close")
	}
}

// emit queues an event. Once Close was called an event that does not fit
// in the backlog is dropped rather than blocking shutdown.
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
		return
	default:
	}

	select {
	case m.events <- ev:
	case <-m.stop:
		m.log.Debug().Msg("dropping event after close")
	}
}
