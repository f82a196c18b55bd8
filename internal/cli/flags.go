package cli

import "codeberg.org/snonux/translink/internal/server"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile  string
	LogLevel string
	LogFile  string

	// Client flags
	Endpoint     string
	LanguagesURL string
	LegacyURL    string
	CachePath    string
	From         string
	To           string
	Mode         string
	Locale       string
	BatchFile    string
	Legacy       bool
	NoAutoPlay   bool
	Refresh      bool

	// Server flags
	Listen      string
	Backend     string
	OpenAIModel string
	GeminiModel string
	TTSProvider string
	TTSModel    string
	TTSVoice    string
	TTSSpeed    float64
	TTSCacheDir string
	ArchiveTTS  bool
	DefaultFrom string
	DefaultTo   string
	Languages   []string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	serverDefaults := server.DefaultConfig()
	return &Flags{
		LogLevel:     "warn",
		Endpoint:     "ws://localhost:9000/ws",
		LanguagesURL: "http://localhost:9000/languages",
		LegacyURL:    "http://localhost:9000/translate",
		Mode:         "text",
		Listen:       serverDefaults.Listen,
		Backend:      "openai",
		OpenAIModel:  "gpt-4o-mini",
		GeminiModel:  "gemini-2.5-flash",
		TTSProvider:  "auto",
		TTSModel:     "gpt-4o-mini-tts",
		TTSVoice:     "alloy",
		TTSSpeed:     1.0,
		DefaultFrom:  serverDefaults.DefaultFrom,
		DefaultTo:    serverDefaults.DefaultTo,
		Languages:    serverDefaults.Languages,
	}
}
