// Package batch reads sentence files for batch translation.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one sentence of a batch file
type Entry struct {
	Line     int    // 1-based line number in the file
	Sentence string
	To       string // target language override, empty for the session default
}

// ReadBatchFile reads sentences from a file, see Parse for the format
func ReadBatchFile(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads one sentence per line. Blank lines and lines starting with
// '#' are skipped. A leading "[code]" overrides the target language for
// that line only:
//
//	Good morning
//	[de] Good night
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Line: lineNo, Sentence: line}
		if to, rest, ok := splitOverride(line); ok {
			entry.To = to
			entry.Sentence = rest
		}
		if entry.Sentence == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

func splitOverride(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "[") {
		return "", "", false
	}
	end := strings.Index(line, "]")
	if end < 2 {
		return "", "", false
	}
	code := strings.TrimSpace(line[1:end])
	if code == "" || strings.ContainsAny(code, " \t") {
		return "", "", false
	}
	return code, strings.TrimSpace(line[end+1:]), true
}
