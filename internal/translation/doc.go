// Package translation provides the translation backends used by the
// companion server (OpenAI and Gemini) and the client for the legacy plain
// request/response endpoint.
package translation
