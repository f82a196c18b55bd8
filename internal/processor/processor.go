package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/translink/internal"
	"codeberg.org/snonux/translink/internal/audio"
	"codeberg.org/snonux/translink/internal/batch"
	"codeberg.org/snonux/translink/internal/catalog"
	"codeberg.org/snonux/translink/internal/cli"
	"codeberg.org/snonux/translink/internal/connection"
	"codeberg.org/snonux/translink/internal/i18n"
	"codeberg.org/snonux/translink/internal/session"
	"codeberg.org/snonux/translink/internal/translation"
)

// ErrTranslationFailed is returned by single sentence runs whose result
// is an error
var ErrTranslationFailed = errors.New("translation failed")

// Processor handles the terminal front end
type Processor struct {
	flags  *cli.Flags
	in     io.Reader
	out    io.Writer
	msg    *i18n.Localizer
	log    zerolog.Logger
	player audio.Player

	from string
	to   string
	mode session.Mode

	languages   catalog.Catalog
	interactive bool
}

// NewProcessor creates a new processor reading stdin and writing stdout
func NewProcessor(flags *cli.Flags, log zerolog.Logger) (*Processor, error) {
	mode, err := session.ParseMode(flags.Mode)
	if err != nil {
		return nil, err
	}
	from, err := catalog.Normalize(flags.From)
	if err != nil {
		return nil, err
	}
	to, err := catalog.Normalize(flags.To)
	if err != nil {
		return nil, err
	}
	if flags.Legacy {
		mode = session.ModeText
	}

	return &Processor{
		flags:  flags,
		in:     os.Stdin,
		out:    os.Stdout,
		msg:    i18n.New(flags.Locale, log),
		log:    log.With().Str("component", "processor").Logger(),
		player: audio.NewExecPlayer(),
		from:   from,
		to:     to,
		mode:   mode,
	}, nil
}

// SetIO replaces stdin and stdout
func (p *Processor) SetIO(in io.Reader, out io.Writer) {
	p.in = in
	p.out = out
}

// SetPlayer replaces the audio player
func (p *Processor) SetPlayer(player audio.Player) {
	p.player = player
}

// ProcessSingle translates one sentence and waits for its audio to finish
func (p *Processor) ProcessSingle(ctx context.Context, sentence string) error {
	b, err := p.open(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	state, err := b.Translate(ctx, sentence, p.from, p.to, p.mode)
	if err != nil {
		return err
	}
	p.render(state)

	if state.Result.Kind == session.ResultAudio && !p.flags.NoAutoPlay {
		if err := state.Result.Audio.Wait(ctx); err != nil {
			return err
		}
	}
	if state.Result.Kind == session.ResultError {
		return ErrTranslationFailed
	}
	return nil
}

// ProcessBatch translates every sentence of the batch file in order
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	b, err := p.open(ctx, false)
	if err != nil {
		return err
	}
	defer b.Close()

	done, failed := 0, 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		to := p.to
		if entry.To != "" {
			if to, err = catalog.Normalize(entry.To); err != nil {
				fmt.Fprintln(p.out, p.msg.T("UnknownLanguage", map[string]any{"Code": entry.To}))
				failed++
				continue
			}
		}

		fmt.Fprintln(p.out, p.msg.T("BatchLine", map[string]any{"Line": entry.Line, "Sentence": entry.Sentence}))
		state, err := b.Translate(ctx, entry.Sentence, p.from, to, p.mode)
		if err != nil {
			return err
		}
		p.render(state)

		if state.Result.Kind == session.ResultError {
			failed++
			continue
		}
		if state.Result.Kind == session.ResultAudio && !p.flags.NoAutoPlay {
			// Let each answer finish before the next one replaces it
			if err := state.Result.Audio.Wait(ctx); err != nil {
				return err
			}
		}
		done++
	}

	fmt.Fprintln(p.out, p.msg.T("BatchSummary", map[string]any{
		"Done":   done,
		"Total":  len(entries),
		"Failed": failed,
	}))
	return nil
}

// RunInteractive reads sentences and commands from the input until EOF or
// :quit
func (p *Processor) RunInteractive(ctx context.Context) error {
	p.interactive = true
	defer func() { p.interactive = false }()

	fmt.Fprintln(p.out, p.msg.T("Welcome", map[string]any{"Version": internal.Version}))

	// Best effort; without a catalog codes are not checked
	p.languages, _ = p.loadCatalog(ctx, false)

	b, err := p.open(ctx, true)
	if err != nil {
		return err
	}
	defer b.Close()

	scanner := bufio.NewScanner(p.in)
	for {
		fmt.Fprint(p.out, p.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(p.out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if quit := p.command(ctx, b, line); quit {
				break
			}
			continue
		}

		state, err := b.Translate(ctx, line, p.from, p.to, p.mode)
		if err != nil {
			if errors.Is(err, session.ErrBusy) {
				fmt.Fprintln(p.out, p.msg.T("Busy", nil))
				continue
			}
			return err
		}
		p.render(state)
	}

	fmt.Fprintln(p.out, p.msg.T("Goodbye", nil))
	return scanner.Err()
}

// ListLanguages prints the catalog. With refresh the cache is cleared first.
func (p *Processor) ListLanguages(ctx context.Context, refresh bool) error {
	_, err := p.listLanguages(ctx, refresh)
	return err
}

// listLanguages prints the catalog and returns it
func (p *Processor) listLanguages(ctx context.Context, refresh bool) (catalog.Catalog, error) {
	langs, source := p.loadCatalog(ctx, refresh)
	if len(langs) == 0 {
		fmt.Fprintln(p.out, p.msg.T("LanguagesUnavailable", nil))
		return nil, catalog.ErrCatalogFetch
	}

	header := p.msg.T("LanguagesHeader", nil)
	if source == catalog.SourceCache {
		header += " " + p.msg.T("LanguagesCached", nil)
	}
	fmt.Fprintln(p.out, header)
	for _, entry := range langs {
		fmt.Fprintf(p.out, "  %-8s %s\n", entry.Code, entry.Name)
	}
	return langs, nil
}

// open connects the backend selected by the flags
func (p *Processor) open(ctx context.Context, verbose bool) (backend, error) {
	if p.flags.Legacy {
		return &legacyBackend{client: translation.NewLegacyClient(p.flags.LegacyURL, nil)}, nil
	}

	if verbose {
		fmt.Fprintln(p.out, p.msg.T("Connecting", map[string]any{"Endpoint": p.flags.Endpoint}))
	}
	b, err := newSessionBackend(ctx, p.flags.Endpoint, p.player, !p.flags.NoAutoPlay, p.log)
	if err != nil {
		fmt.Fprintln(p.out, p.msg.T("ConnectFailed", map[string]any{"Endpoint": p.flags.Endpoint, "Error": err}))
		return nil, err
	}
	if verbose {
		fmt.Fprintln(p.out, p.msg.T("Connected", nil))
	}
	return b, nil
}

func (p *Processor) loadCatalog(ctx context.Context, refresh bool) (catalog.Catalog, catalog.Source) {
	var store catalog.Store
	if p.flags.CachePath != "" {
		s, err := catalog.NewSQLiteStore(p.flags.CachePath)
		if err != nil {
			p.log.Warn().Err(err).Str("path", p.flags.CachePath).Msg("catalog cache unavailable")
		} else {
			defer s.Close()
			store = s
		}
	}
	if store == nil {
		store = catalog.NopStore{}
	}

	cache := catalog.NewCache(store, catalog.NewHTTPFetcher(p.flags.LanguagesURL, nil), p.log)
	if refresh {
		if err := cache.Clear(ctx); err != nil {
			p.log.Warn().Err(err).Msg("failed to clear catalog cache")
		} else {
			fmt.Fprintln(p.out, p.msg.T("CacheCleared", nil))
		}
	}

	langs, source, err := cache.Get(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("language catalog unavailable")
	}
	return langs, source
}

func (p *Processor) prompt() string {
	from, to := p.from, p.to
	if from == "" {
		from = "auto"
	}
	if to == "" {
		to = "auto"
	}
	return p.msg.T("Prompt", map[string]any{"From": from, "To": to, "Mode": string(p.mode)})
}

// render prints a settled state
func (p *Processor) render(s session.State) {
	switch s.Result.Kind {
	case session.ResultText:
		fmt.Fprintln(p.out, s.Result.Text)
	case session.ResultAudio:
		// Outside the prompt there is no :play, and the file goes away on exit
		key := "AudioDiscarded"
		switch {
		case !p.flags.NoAutoPlay:
			key = "AudioPlaying"
		case p.interactive:
			key = "AudioSaved"
		}
		fmt.Fprintln(p.out, p.msg.T(key, map[string]any{"Bytes": s.Result.Audio.Size}))
	case session.ResultError:
		fmt.Fprintln(p.out, p.errorMessage(s.Result))
	}
}

func (p *Processor) errorMessage(r session.Result) string {
	switch {
	case errors.Is(r.Err, session.ErrValidation) && r.Message == session.EmptySentenceMessage:
		return p.msg.T("EmptySentence", nil)
	case errors.Is(r.Err, session.ErrConnectionClosed):
		return p.msg.T("ConnectionClosed", nil)
	case errors.Is(r.Err, connection.ErrNotConnected):
		return p.msg.T("NotConnected", nil)
	case errors.Is(r.Err, audio.ErrDecode):
		return p.msg.T("AudioDecode", nil)
	}
	return p.msg.T("ErrorResult", map[string]any{"Message": r.Message})
}
