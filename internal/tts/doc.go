// Package tts synthesizes speech for the companion server. Every
// synthesizer returns mp3 bytes ready to be sent as one binary frame.
package tts
