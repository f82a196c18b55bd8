// Package server is the companion translation server. It serves the
// language catalog, the legacy plain translation endpoint and the
// websocket endpoint the interactive client talks to.
package server
