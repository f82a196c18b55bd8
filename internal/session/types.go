package session

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/connection"
)

// Mode selects how the answer is delivered
type Mode string

const (
	ModeText   Mode = "text"
	ModeSpeech Mode = "speech"
)

// ParseMode parses a mode name; blank means text
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeText:
		return ModeText, nil
	case ModeSpeech:
		return ModeSpeech, nil
	default:
		return "", fmt.Errorf("unknown mode %q (use text or speech)", s)
	}
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeText || m == ModeSpeech
}

// Request is the frame sent for one submission. Unspecified language codes
// are omitted and defaulted by the server.
type Request struct {
	Sentence         string `json:"sentence"`
	FromLanguageCode string `json:"fromLanguageCode,omitempty"`
	ToLanguageCode   string `json:"toLanguageCode,omitempty"`
	Mode             Mode   `json:"mode"`
}

// Phase is the request lifecycle of a session
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// ResultKind tags a Result
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultText
	ResultAudio
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultText:
		return "text"
	case ResultAudio:
		return "audio"
	case ResultError:
		return "error"
	default:
		return "none"
	}
}

// Result is the outcome of the last submission
type Result struct {
	Kind    ResultKind
	Text    string        // ResultText
	Audio   *audio.Handle // ResultAudio; owned by the session
	Message string        // ResultError, user visible
	Err     error         // ResultError, for errors.Is
}

// TextResult builds a text result
func TextResult(text string) Result {
	return Result{Kind: ResultText, Text: text}
}

// AudioResult builds an audio result
func AudioResult(h *audio.Handle) Result {
	return Result{Kind: ResultAudio, Audio: h}
}

// ErrorResult builds an error result with a user visible message
func ErrorResult(message string, err error) Result {
	return Result{Kind: ResultError, Message: message, Err: err}
}

// State is a snapshot of the session for rendering
type State struct {
	Phase      Phase
	Result     Result // meaningful only when Phase is PhaseSettled
	Connection connection.State
	Request    *Request // the in-flight request while pending
}
