package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/connection"
	"codeberg.org/snonux/translink/internal/session"
	"codeberg.org/snonux/translink/internal/translation"
)

const connectTimeout = 10 * time.Second

// backend answers one sentence at a time
type backend interface {
	Translate(ctx context.Context, sentence, from, to string, mode session.Mode) (session.State, error)
	Reset() error
	Current() *audio.Handle
	Close() error
}

// sessionBackend runs a session over the websocket endpoint
type sessionBackend struct {
	session *session.Manager
	audio   *audio.Handler
	cancel  context.CancelFunc
	runDone chan struct{}
}

func newSessionBackend(ctx context.Context, endpoint string, player audio.Player, autoPlay bool, log zerolog.Logger) (*sessionBackend, error) {
	conn := connection.NewManager(endpoint, log)

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := conn.Connect(dialCtx); err != nil {
		return nil, err
	}

	handler := audio.NewHandler(audio.Config{AutoPlay: autoPlay}, player, log)
	s := session.NewManager(conn, handler, log)

	runCtx, runCancel := context.WithCancel(context.Background())
	b := &sessionBackend{
		session: s,
		audio:   handler,
		cancel:  runCancel,
		runDone: make(chan struct{}),
	}
	go func() {
		defer close(b.runDone)
		s.Run(runCtx)
	}()

	return b, nil
}

func (b *sessionBackend) Translate(ctx context.Context, sentence, from, to string, mode session.Mode) (session.State, error) {
	if err := b.session.Submit(sentence, from, to, mode); err != nil {
		if errors.Is(err, session.ErrBusy) {
			return b.session.Snapshot(), err
		}
		// Rejected submissions settle with an error result
		return b.session.Snapshot(), nil
	}
	return b.session.Wait(ctx)
}

func (b *sessionBackend) Reset() error {
	return b.session.Reset()
}

func (b *sessionBackend) Current() *audio.Handle {
	s := b.session.Snapshot()
	if s.Result.Kind != session.ResultAudio {
		return nil
	}
	return s.Result.Audio
}

func (b *sessionBackend) Close() error {
	err := b.session.Close()
	b.cancel()
	<-b.runDone
	return err
}

// legacyBackend uses the plain request/response endpoint. It only
// produces text.
type legacyBackend struct {
	client *translation.LegacyClient
}

func (b *legacyBackend) Translate(ctx context.Context, sentence, from, to string, mode session.Mode) (session.State, error) {
	state := session.State{Phase: session.PhaseSettled, Connection: connection.StateOpen}

	if strings.TrimSpace(sentence) == "" {
		state.Result = session.ErrorResult(session.EmptySentenceMessage, session.ErrValidation)
		return state, nil
	}

	text, err := b.client.Translate(ctx, sentence, from, to)
	if err != nil {
		state.Result = session.ErrorResult(fmt.Sprintf("Could not translate: %v", err), err)
		return state, nil
	}
	state.Result = session.TextResult(text)
	return state, nil
}

func (b *legacyBackend) Reset() error { return nil }
func (b *legacyBackend) Current() *audio.Handle { return nil }
func (b *legacyBackend) Close() error { return nil }
