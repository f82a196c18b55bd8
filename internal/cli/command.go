package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/translink/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "translink [sentence]",
		Short: "Sentence translation over a live connection",
		Long: `translink translates sentences through a translation server and
delivers the answer as text or as synthesized speech.

Examples:
  translink                          # Interactive prompt
  translink "Good morning"           # Translate one sentence
  translink --to tr --mode speech "Good morning"
  translink --batch sentences.txt    # Translate a file, one sentence per line
  translink languages                # List the available languages
  translink serve                    # Run the companion server`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateLanguagesCommand creates the "languages" subcommand
func CreateLanguagesCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages offered by the server",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "Discard the cached language list and fetch it again")
	return cmd
}

// CreateModelsCommand creates the "models" subcommand
func CreateModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI models usable for translation and speech",
		Args:  cobra.NoArgs,
	}
}

// CreateServeCommand creates the "serve" subcommand
func CreateServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion translation server",
		Args:  cobra.NoArgs,
	}
	setupServeFlags(cmd, flags)
	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	home, _ := os.UserHomeDir()
	defaultCachePath := filepath.Join(home, ".cache", "translink", "catalog.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.translink.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: trace, debug, info, warn, error, off")
	cmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.PersistentFlags().StringVar(&flags.LanguagesURL, "languages-url", flags.LanguagesURL, "URL of the language catalog")
	cmd.PersistentFlags().StringVar(&flags.CachePath, "cache", defaultCachePath, "Language catalog cache database")
	cmd.PersistentFlags().StringVar(&flags.Locale, "locale", "", "Language of translink's own messages (default: from $LANG)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Endpoint, "endpoint", "e", flags.Endpoint, "Websocket endpoint of the translation server")
	cmd.Flags().StringVar(&flags.LegacyURL, "legacy-url", flags.LegacyURL, "Plain request/response endpoint used with --legacy")
	cmd.Flags().StringVarP(&flags.From, "from", "f", "", "Source language code (default: server decides)")
	cmd.Flags().StringVarP(&flags.To, "to", "t", "", "Target language code (default: server decides)")
	cmd.Flags().StringVarP(&flags.Mode, "mode", "m", flags.Mode, "Answer as text or speech")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate sentences from file (one per line)")
	cmd.Flags().BoolVar(&flags.Legacy, "legacy", false, "Use the plain request/response endpoint (text only)")
	cmd.Flags().BoolVar(&flags.NoAutoPlay, "no-auto-play", false, "Do not play audio answers automatically")

	bindFlagsToViper(cmd)
}

func setupServeFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.Listen, "listen", flags.Listen, "Address to listen on")
	cmd.Flags().StringVar(&flags.Backend, "backend", flags.Backend, "Translation backend: openai or gemini")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model used for translation")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model used for translation")
	cmd.Flags().StringVar(&flags.TTSProvider, "tts", flags.TTSProvider, "Speech provider: openai, espeak or auto")
	cmd.Flags().StringVar(&flags.TTSModel, "tts-model", flags.TTSModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.TTSVoice, "tts-voice", flags.TTSVoice, "OpenAI voice: alloy, ash, coral, echo, fable, nova, onyx, sage, shimmer")
	cmd.Flags().Float64Var(&flags.TTSSpeed, "tts-speed", flags.TTSSpeed, "OpenAI speech speed (0.25 to 4.0)")
	cmd.Flags().StringVar(&flags.TTSCacheDir, "tts-cache", "", "Cache synthesized audio in this directory")
	cmd.Flags().BoolVar(&flags.ArchiveTTS, "archive-cache", false, "Move the speech cache to an archive directory and exit")
	cmd.Flags().StringVar(&flags.DefaultFrom, "default-from", flags.DefaultFrom, "Source language when a request names none")
	cmd.Flags().StringVar(&flags.DefaultTo, "default-to", flags.DefaultTo, "Target language when a request names none")
	cmd.Flags().StringSliceVar(&flags.Languages, "languages", flags.Languages, "Language codes offered to clients")

	bindServeFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.file", cmd.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("client.languages_url", cmd.PersistentFlags().Lookup("languages-url"))
	viper.BindPFlag("client.cache_path", cmd.PersistentFlags().Lookup("cache"))
	viper.BindPFlag("client.locale", cmd.PersistentFlags().Lookup("locale"))
	viper.BindPFlag("client.endpoint", cmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("client.legacy_url", cmd.Flags().Lookup("legacy-url"))
	viper.BindPFlag("client.from", cmd.Flags().Lookup("from"))
	viper.BindPFlag("client.to", cmd.Flags().Lookup("to"))
	viper.BindPFlag("client.mode", cmd.Flags().Lookup("mode"))
}

func bindServeFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.backend", cmd.Flags().Lookup("backend"))
	viper.BindPFlag("server.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("server.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("server.tts_provider", cmd.Flags().Lookup("tts"))
	viper.BindPFlag("server.tts_model", cmd.Flags().Lookup("tts-model"))
	viper.BindPFlag("server.tts_voice", cmd.Flags().Lookup("tts-voice"))
	viper.BindPFlag("server.tts_speed", cmd.Flags().Lookup("tts-speed"))
	viper.BindPFlag("server.tts_cache", cmd.Flags().Lookup("tts-cache"))
	viper.BindPFlag("server.default_from", cmd.Flags().Lookup("default-from"))
	viper.BindPFlag("server.default_to", cmd.Flags().Lookup("default-to"))
	viper.BindPFlag("server.languages", cmd.Flags().Lookup("languages"))
}

// ApplyConfig copies the resolved configuration (flag, then environment,
// then config file, then default) back into flags
func ApplyConfig(flags *Flags) {
	flags.LogLevel = viper.GetString("log.level")
	flags.LogFile = viper.GetString("log.file")

	flags.Endpoint = viper.GetString("client.endpoint")
	flags.LanguagesURL = viper.GetString("client.languages_url")
	flags.LegacyURL = viper.GetString("client.legacy_url")
	flags.CachePath = viper.GetString("client.cache_path")
	flags.From = viper.GetString("client.from")
	flags.To = viper.GetString("client.to")
	flags.Mode = viper.GetString("client.mode")
	flags.Locale = viper.GetString("client.locale")
	if viper.IsSet("client.auto_play") && !flags.NoAutoPlay {
		flags.NoAutoPlay = !viper.GetBool("client.auto_play")
	}

	flags.Listen = viper.GetString("server.listen")
	flags.Backend = viper.GetString("server.backend")
	flags.OpenAIModel = viper.GetString("server.openai_model")
	flags.GeminiModel = viper.GetString("server.gemini_model")
	flags.TTSProvider = viper.GetString("server.tts_provider")
	flags.TTSModel = viper.GetString("server.tts_model")
	flags.TTSVoice = viper.GetString("server.tts_voice")
	flags.TTSSpeed = viper.GetFloat64("server.tts_speed")
	flags.TTSCacheDir = viper.GetString("server.tts_cache")
	flags.DefaultFrom = viper.GetString("server.default_from")
	flags.DefaultTo = viper.GetString("server.default_to")
	flags.Languages = viper.GetStringSlice("server.languages")
}

// InitConfig loads .env, then the config file, and enables TRANSLINK_*
// environment overrides
func InitConfig(cfgFile string) {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".translink" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".translink")
	}

	viper.SetEnvPrefix("TRANSLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("server.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("server.gemini_key")
}
