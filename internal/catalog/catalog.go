package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageEntry is one supported language
type LanguageEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Catalog is the ordered list of supported languages
type Catalog []LanguageEntry

// ErrMalformed is returned when serialized catalog data cannot be used
var ErrMalformed = errors.New("malformed language catalog")

// Parse decodes a serialized catalog. Entries must carry a code and a name
// and codes must be unique.
func Parse(data []byte) (Catalog, error) {
	var entries []LanguageEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("%w: not a list", ErrMalformed)
	}

	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Code) == "" || strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has empty code or name", ErrMalformed, i)
		}
		if seen[e.Code] {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrMalformed, e.Code)
		}
		seen[e.Code] = true
	}

	return Catalog(entries), nil
}

// Encode serializes the catalog in the same form Parse reads
func (c Catalog) Encode() ([]byte, error) {
	if c == nil {
		c = Catalog{}
	}
	return json.Marshal([]LanguageEntry(c))
}

// Lookup finds an entry by code
func (c Catalog) Lookup(code string) (LanguageEntry, bool) {
	for _, e := range c {
		if e.Code == code {
			return e, true
		}
	}
	return LanguageEntry{}, false
}

// Codes returns the language codes in catalog order
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for _, e := range c {
		codes = append(codes, e.Code)
	}
	return codes
}

// Normalize canonicalizes a user supplied language code ("EN", "en_us")
// into BCP 47 form. Blank input stays blank, meaning unspecified.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// DisplayName returns the English name of a language code, or "" when the
// code does not parse
func DisplayName(code string) string {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return ""
	}
	return display.English.Tags().Name(tag)
}

// FromCodes builds a catalog with English display names. Invalid and
// duplicate codes are skipped.
func FromCodes(codes []string) Catalog {
	c := make(Catalog, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, raw := range codes {
		code, err := Normalize(raw)
		if err != nil || code == "" || seen[code] {
			continue
		}
		seen[code] = true
		c = append(c, LanguageEntry{Code: code, Name: DisplayName(code)})
	}
	return c
}
