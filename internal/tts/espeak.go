package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Speed     int // Speech speed in words per minute (default: 150)
	Pitch     int // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int // Gap between words in 10ms units (default: 0)
}

// DefaultESpeakConfig returns the default espeak-ng settings
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Speed:     150,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeakProvider synthesizes speech locally with espeak-ng and converts
// the result to mp3 with ffmpeg
type ESpeakProvider struct {
	config *ESpeakConfig
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) (*ESpeakProvider, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultESpeakConfig()
	}
	return &ESpeakProvider{config: clampConfig(*config)}, nil
}

// Synthesize returns mp3 audio for text
func (p *ESpeakProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	dir, err := os.MkdirTemp("", "translink-espeak-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	wav := filepath.Join(dir, "speech.wav")
	mp3 := filepath.Join(dir, "speech.mp3")

	cmd := exec.CommandContext(ctx, "espeak-ng", p.args(text, VoiceFor(lang), wav)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}

	if err := convertWAVToMP3(ctx, wav, mp3); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(mp3)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	return data, nil
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}

func (p *ESpeakProvider) args(text, voice, outputFile string) []string {
	args := []string{
		"-v", voice,
		"-s", fmt.Sprintf("%d", p.config.Speed),
		"-p", fmt.Sprintf("%d", p.config.Pitch),
		"-a", fmt.Sprintf("%d", p.config.Amplitude),
	}
	if p.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", p.config.WordGap))
	}
	return append(args, "-w", outputFile, text)
}

// VoiceFor maps a language code to an espeak-ng voice name. espeak-ng
// names its voices after the base language, e.g. "tr" or "pt".
func VoiceFor(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "en"
	}
	return base.String()
}

func clampConfig(c ESpeakConfig) *ESpeakConfig {
	c.Speed = clamp(c.Speed, 80, 450)
	c.Pitch = clamp(c.Pitch, 0, 99)
	c.Amplitude = clamp(c.Amplitude, 0, 200)
	if c.WordGap < 0 {
		c.WordGap = 0
	}
	return &c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// convertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func convertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "libmp3lame", "-y", mp3File)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}
