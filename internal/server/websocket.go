package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/session"
)

const (
	writeWait      = 10 * time.Second
	requestTimeout = 60 * time.Second
	maxMessageSize = 64 << 10
)

// handleWebSocket answers every request frame with exactly one reply, in
// the order the requests arrived
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := s.log.With().Str("conn", uuid.NewString()).Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("client connected")
	defer log.Info().Msg("client disconnected")

	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			log.Debug().Msg("ignoring binary frame from client")
			continue
		}

		frameType, reply := s.reply(ctx, log, data)

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(frameType, reply); err != nil {
			log.Warn().Err(err).Msg("write failed")
			return
		}
	}
}

// reply produces the single answer to one request frame
func (s *Server) reply(ctx context.Context, log zerolog.Logger, data []byte) (int, []byte) {
	var req session.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorReply("malformed request")
	}

	if strings.TrimSpace(req.Sentence) == "" {
		return errorReply(session.EmptySentenceMessage)
	}

	mode, err := session.ParseMode(string(req.Mode))
	if err != nil {
		return errorReply(err.Error())
	}

	from, to, err := s.languages(req.FromLanguageCode, req.ToLanguageCode)
	if err != nil {
		return errorReply(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	translated, err := s.translator.Translate(ctx, req.Sentence, from, to)
	if err != nil {
		log.Error().Err(err).Str("from", from).Str("to", to).Msg("translation failed")
		return errorReply("translation failed")
	}

	if mode == session.ModeText {
		log.Debug().Str("from", from).Str("to", to).Dur("took", time.Since(start)).Msg("translated")
		return websocket.TextMessage, []byte(translated)
	}

	if s.synth == nil {
		return errorReply("speech is not available on this server")
	}

	speech, err := s.synth.Synthesize(ctx, translated, to)
	if err != nil {
		log.Error().Err(err).Str("to", to).Msg("speech synthesis failed")
		return errorReply("speech synthesis failed")
	}
	// Clients treat every binary reply as mp3
	if err := audio.ValidateMP3(speech); err != nil {
		log.Error().Err(err).Str("provider", s.synth.Name()).Str("want", audio.MIMEType).Msg("synthesizer returned unusable audio")
		return errorReply("speech synthesis failed")
	}

	log.Debug().Str("from", from).Str("to", to).Int("bytes", len(speech)).Dur("took", time.Since(start)).Msg("synthesized")
	return websocket.BinaryMessage, speech
}

func errorReply(msg string) (int, []byte) {
	return websocket.TextMessage, []byte(fmt.Sprintf("Error: %s", msg))
}
