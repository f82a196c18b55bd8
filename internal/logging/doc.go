// Package logging builds the zerolog loggers shared by the translink client
// and server. Diagnostics go to a log file (or stderr when no file is set) so
// they never interleave with the interactive prompt.
package logging
