package cli

import (
	"reflect"
	"testing"

	"codeberg.org/snonux/translink/internal/server"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", flags.LogLevel, "warn"},
		{"Endpoint", flags.Endpoint, "ws://localhost:9000/ws"},
		{"LanguagesURL", flags.LanguagesURL, "http://localhost:9000/languages"},
		{"LegacyURL", flags.LegacyURL, "http://localhost:9000/translate"},
		{"Mode", flags.Mode, "text"},
		{"Listen", flags.Listen, ":9000"},
		{"Backend", flags.Backend, "openai"},
		{"OpenAIModel", flags.OpenAIModel, "gpt-4o-mini"},
		{"GeminiModel", flags.GeminiModel, "gemini-2.5-flash"},
		{"TTSProvider", flags.TTSProvider, "auto"},
		{"TTSModel", flags.TTSModel, "gpt-4o-mini-tts"},
		{"TTSVoice", flags.TTSVoice, "alloy"},
		{"TTSSpeed", flags.TTSSpeed, 1.0},
		{"DefaultFrom", flags.DefaultFrom, "en"},
		{"DefaultTo", flags.DefaultTo, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Legacy", flags.Legacy},
		{"NoAutoPlay", flags.NoAutoPlay},
		{"Refresh", flags.Refresh},
		{"ArchiveTTS", flags.ArchiveTTS},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != false {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"LogFile", flags.LogFile},
		{"From", flags.From},
		{"To", flags.To},
		{"Locale", flags.Locale},
		{"BatchFile", flags.BatchFile},
		{"TTSCacheDir", flags.TTSCacheDir},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %q, want empty string", tt.name, tt.value)
			}
		})
	}

	if len(flags.Languages) == 0 || flags.Languages[0] != "en" {
		t.Errorf("Languages = %v, want a list starting with en", flags.Languages)
	}
}

func TestNewFlags_ServerDefaults(t *testing.T) {
	flags := NewFlags()
	defaults := server.DefaultConfig()

	if flags.Listen != defaults.Listen {
		t.Errorf("Listen = %q, want %q", flags.Listen, defaults.Listen)
	}
	if flags.DefaultFrom != defaults.DefaultFrom || flags.DefaultTo != defaults.DefaultTo {
		t.Errorf("DefaultFrom/DefaultTo = %q/%q, want %q/%q", flags.DefaultFrom, flags.DefaultTo, defaults.DefaultFrom, defaults.DefaultTo)
	}
	if !reflect.DeepEqual(flags.Languages, defaults.Languages) {
		t.Errorf("Languages = %v, want %v", flags.Languages, defaults.Languages)
	}
}
