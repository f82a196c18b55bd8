package session

import "errors"

// EmptySentenceMessage is the user visible result of a blank submission
const EmptySentenceMessage = "Sentence must be entered."

var (
	// ErrValidation is returned for submissions rejected before sending
	ErrValidation = errors.New("invalid submission")

	// ErrBusy is returned when a request is already pending
	ErrBusy = errors.New("a translation is already in progress")

	// ErrConnectionClosed settles a pending request whose connection closed
	ErrConnectionClosed = errors.New("connection closed")
)
