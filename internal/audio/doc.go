// Package audio turns binary speech replies into playable handles. It keeps
// at most one handle alive: every new reply releases the previous one, which
// stops its playback and deletes its temp file.
package audio
