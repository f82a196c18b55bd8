// Package processor contains the terminal front end of translink. It
// drives a translation session from single sentences, batch files or an
// interactive prompt and renders the session's results.
package processor
