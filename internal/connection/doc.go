// Package connection owns the single websocket a translink session talks
// over. It turns the socket's callbacks into one ordered event channel and
// never reconnects on its own.
package connection
