package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	t.Cleanup(viper.Reset)
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "translink [sentence]" {
		t.Errorf("Expected Use to be 'translink [sentence]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "translation") {
		t.Errorf("Expected Short description to mention translation, got %q", cmd.Short)
	}

	if err := cmd.Args(cmd, []string{"one", "two"}); err == nil {
		t.Error("Expected an error for two positional arguments")
	}

	flagTests := []struct {
		name       string
		persistent bool
	}{
		{"config", true},
		{"log-level", true},
		{"log-file", true},
		{"languages-url", true},
		{"cache", true},
		{"locale", true},
		{"endpoint", false},
		{"legacy-url", false},
		{"from", false},
		{"to", false},
		{"mode", false},
		{"batch", false},
		{"legacy", false},
		{"no-auto-play", false},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			var flag *pflag.Flag
			if tt.persistent {
				flag = cmd.PersistentFlags().Lookup(tt.name)
			} else {
				flag = cmd.Flags().Lookup(tt.name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	cacheFlag := cmd.PersistentFlags().Lookup("cache")
	if cacheFlag == nil {
		t.Fatal("cache flag not found")
	}

	home, _ := os.UserHomeDir()
	expectedDefault := filepath.Join(home, ".cache", "translink", "catalog.db")
	if cacheFlag.DefValue != expectedDefault {
		t.Errorf("Expected default cache path to be %s, got %s", expectedDefault, cacheFlag.DefValue)
	}

	shorthands := map[string]string{"endpoint": "e", "from": "f", "to": "t", "mode": "m"}
	for name, short := range shorthands {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Shorthand != short {
			t.Errorf("Expected flag %s to have shorthand -%s", name, short)
		}
	}

	if err := cmd.ParseFlags([]string{"-t", "tr", "--mode", "speech", "--no-auto-play"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if flags.To != "tr" || flags.Mode != "speech" || !flags.NoAutoPlay {
		t.Errorf("flags not parsed: to=%q mode=%q noAutoPlay=%v", flags.To, flags.Mode, flags.NoAutoPlay)
	}
}

func TestSubcommands(t *testing.T) {
	t.Cleanup(viper.Reset)
	flags := NewFlags()

	languages := CreateLanguagesCommand(flags)
	if err := languages.ParseFlags([]string{"--refresh"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if !flags.Refresh {
		t.Error("Expected --refresh to set Refresh")
	}

	if models := CreateModelsCommand(); models.Use != "models" {
		t.Errorf("Expected models command, got %s", models.Use)
	}

	serve := CreateServeCommand(flags)
	for _, name := range []string{"listen", "backend", "openai-model", "gemini-model", "tts", "tts-model", "tts-voice", "tts-speed", "tts-cache", "archive-cache", "default-from", "default-to", "languages"} {
		if serve.Flags().Lookup(name) == nil {
			t.Errorf("Expected serve flag %s to exist", name)
		}
	}

	if err := serve.ParseFlags([]string{"--languages", "en,tr", "--tts-speed", "1.5"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if strings.Join(flags.Languages, ",") != "en,tr" {
		t.Errorf("Languages = %v, want [en tr]", flags.Languages)
	}
	if flags.TTSSpeed != 1.5 {
		t.Errorf("TTSSpeed = %v, want 1.5", flags.TTSSpeed)
	}
}

func TestApplyConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "translink.yaml")
	content := `client:
  endpoint: ws://config.example:9000/ws
  to: de
  auto_play: false
server:
  listen: ":7000"
  languages: [en, bg]
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	t.Setenv("TRANSLINK_CLIENT_MODE", "speech")

	flags := NewFlags()
	root := CreateRootCommand(flags)
	root.AddCommand(CreateServeCommand(flags))
	if err := root.ParseFlags([]string{"--to", "tr"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	InitConfig(cfgPath)
	ApplyConfig(flags)

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"flag beats config", flags.To, "tr"},
		{"config beats default", flags.Endpoint, "ws://config.example:9000/ws"},
		{"environment beats default", flags.Mode, "speech"},
		{"default kept", flags.LegacyURL, "http://localhost:9000/translate"},
		{"auto_play false disables autoplay", flags.NoAutoPlay, true},
		{"server listen", flags.Listen, ":7000"},
		{"server languages", strings.Join(flags.Languages, ","), "en,bg"},
		{"server default", flags.Backend, "openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestInitConfig_NoFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	// Should not panic without a config file
	InitConfig("")

	if got := viper.ConfigFileUsed(); got != "" {
		t.Errorf("Unexpected config file %s", got)
	}
}

func TestGetAPIKeys(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	tests := []struct {
		name   string
		env    string
		key    string
		get    func() string
		config string
	}{
		{"openai from env", "OPENAI_API_KEY", "server.openai_key", GetOpenAIKey, ""},
		{"openai from config", "OPENAI_API_KEY", "server.openai_key", GetOpenAIKey, "cfg-openai"},
		{"gemini from env", "GEMINI_API_KEY", "server.gemini_key", GetGeminiKey, ""},
		{"gemini from config", "GEMINI_API_KEY", "server.gemini_key", GetGeminiKey, "cfg-gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			if tt.config != "" {
				t.Setenv(tt.env, "")
				viper.Set(tt.key, tt.config)
				if got := tt.get(); got != tt.config {
					t.Errorf("got %q, want %q", got, tt.config)
				}
				return
			}

			t.Setenv(tt.env, "env-key")
			viper.Set(tt.key, "ignored")
			if got := tt.get(); got != "env-key" {
				t.Errorf("got %q, want env-key", got)
			}
		})
	}
}
