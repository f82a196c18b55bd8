// Package session implements the translation session: it sends one request
// at a time over the connection, matches the next inbound frame to it and
// exposes the resulting state to the front end.
//
// The wire protocol carries no request id, so a session allows at most one
// outstanding request. Submitting while a request is pending fails with
// ErrBusy instead of queueing.
package session
