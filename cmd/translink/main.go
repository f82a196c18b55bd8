package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"codeberg.org/snonux/translink/internal/archive"
	"codeberg.org/snonux/translink/internal/cli"
	"codeberg.org/snonux/translink/internal/logging"
	"codeberg.org/snonux/translink/internal/models"
	"codeberg.org/snonux/translink/internal/processor"
	"codeberg.org/snonux/translink/internal/server"
	"codeberg.org/snonux/translink/internal/translation"
	"codeberg.org/snonux/translink/internal/tts"
)

// exitCode is set when a sentence was processed but its result is an error
var exitCode int

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create commands
	rootCmd := cli.CreateRootCommand(flags)
	languagesCmd := cli.CreateLanguagesCommand(flags)
	modelsCmd := cli.CreateModelsCommand()
	serveCmd := cli.CreateServeCommand(flags)
	rootCmd.AddCommand(languagesCmd, modelsCmd, serveCmd)

	log := logging.Nop()
	var logger *logging.Logger

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ApplyConfig(flags)

		l, err := logging.New(flags.LogLevel, flags.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v, logging disabled\n", err)
			return
		}
		logger = l
		log = l.Logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runClient(ctx, args, flags, log)
	}
	languagesCmd.RunE = func(cmd *cobra.Command, args []string) error {
		proc, err := processor.NewProcessor(flags, log)
		if err != nil {
			return err
		}
		return proc.ListLanguages(ctx, flags.Refresh)
	}
	modelsCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return models.NewLister(cli.GetOpenAIKey(), "").ListAvailableModels(ctx, os.Stdout)
	}
	serveCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(ctx, flags, log)
	}

	// Execute command
	err := rootCmd.Execute()
	stop()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func runClient(ctx context.Context, args []string, flags *cli.Flags, log zerolog.Logger) error {
	proc, err := processor.NewProcessor(flags, log)
	if err != nil {
		return err
	}

	switch {
	case flags.BatchFile != "":
		return proc.ProcessBatch(ctx)
	case len(args) > 0:
		err := proc.ProcessSingle(ctx, args[0])
		if errors.Is(err, processor.ErrTranslationFailed) {
			// Already shown to the user
			exitCode = 2
			return nil
		}
		return err
	default:
		return proc.RunInteractive(ctx)
	}
}

func runServer(ctx context.Context, flags *cli.Flags, log zerolog.Logger) error {
	if flags.ArchiveTTS {
		path, err := archive.ArchiveCache(flags.TTSCacheDir)
		if err != nil {
			return err
		}
		fmt.Printf("Speech cache archived to: %s\n", path)
		return nil
	}

	translator, err := translation.NewTranslator(ctx, translation.Config{
		Backend:     flags.Backend,
		OpenAIKey:   cli.GetOpenAIKey(),
		OpenAIModel: flags.OpenAIModel,
		GeminiKey:   cli.GetGeminiKey(),
		GeminiModel: flags.GeminiModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	ttsConfig := tts.DefaultProviderConfig()
	ttsConfig.Provider = flags.TTSProvider
	ttsConfig.OpenAIKey = cli.GetOpenAIKey()
	ttsConfig.OpenAIModel = flags.TTSModel
	ttsConfig.OpenAIVoice = flags.TTSVoice
	ttsConfig.OpenAISpeed = flags.TTSSpeed
	ttsConfig.CacheDir = flags.TTSCacheDir
	ttsConfig.EnableCache = flags.TTSCacheDir != ""

	// Text mode keeps working without a speech provider
	synth, err := tts.NewProvider(ttsConfig, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: speech disabled: %v\n", err)
		synth = nil
	}

	srv := server.New(server.Config{
		Listen:      flags.Listen,
		DefaultFrom: flags.DefaultFrom,
		DefaultTo:   flags.DefaultTo,
		Languages:   flags.Languages,
	}, translator, synth, log)

	fmt.Printf("translink server listening on %s (translation: %s)\n", flags.Listen, translator.Name())
	return srv.Start(ctx)
}
