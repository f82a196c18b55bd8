package processor

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/translink/internal/catalog"
	"codeberg.org/snonux/translink/internal/session"
)

// command runs one ":" command and reports whether to quit
func (p *Processor) command(ctx context.Context, b backend, line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case ":quit", ":q", ":exit":
		return true

	case ":help", ":h":
		fmt.Fprintln(p.out, p.msg.T("Help", nil))

	case ":from":
		if isAuto(arg) {
			p.from = ""
			fmt.Fprintln(p.out, p.msg.T("FromCleared", nil))
		} else if code, name, ok := p.language(arg); ok {
			p.from = code
			fmt.Fprintln(p.out, p.msg.T("FromSet", map[string]any{"Code": code, "Name": name}))
		}

	case ":to":
		if isAuto(arg) {
			p.to = ""
			fmt.Fprintln(p.out, p.msg.T("ToCleared", nil))
		} else if code, name, ok := p.language(arg); ok {
			p.to = code
			fmt.Fprintln(p.out, p.msg.T("ToSet", map[string]any{"Code": code, "Name": name}))
		}

	case ":mode":
		mode, err := session.ParseMode(arg)
		if err != nil || (p.flags.Legacy && mode != session.ModeText) {
			fmt.Fprintln(p.out, p.msg.T("ErrorResult", map[string]any{"Message": fmt.Sprintf("unsupported mode %q", arg)}))
			break
		}
		p.mode = mode
		fmt.Fprintln(p.out, p.msg.T("ModeSet", map[string]any{"Mode": string(mode)}))

	case ":languages", ":langs":
		if langs, err := p.listLanguages(ctx, arg == "refresh"); err == nil {
			p.languages = langs
		}

	case ":play":
		h := b.Current()
		if h == nil {
			fmt.Fprintln(p.out, p.msg.T("NoAudio", nil))
			break
		}
		if err := h.Play(); err != nil {
			fmt.Fprintln(p.out, p.msg.T("ErrorResult", map[string]any{"Message": err.Error()}))
		}

	case ":reset":
		if err := b.Reset(); err != nil {
			fmt.Fprintln(p.out, p.msg.T("Busy", nil))
			break
		}
		fmt.Fprintln(p.out, p.msg.T("Cleared", nil))

	default:
		fmt.Fprintln(p.out, p.msg.T("UnknownCommand", map[string]any{"Command": fields[0]}))
	}
	return false
}

// isAuto reports whether arg leaves the language to the server
func isAuto(arg string) bool {
	return arg == "" || strings.EqualFold(arg, "auto")
}

// language validates a code against the catalog, when one is loaded
func (p *Processor) language(arg string) (string, string, bool) {
	code, err := catalog.Normalize(arg)
	if err != nil || code == "" {
		fmt.Fprintln(p.out, p.msg.T("UnknownLanguage", map[string]any{"Code": arg}))
		return "", "", false
	}

	if len(p.languages) == 0 {
		return code, catalog.DisplayName(code), true
	}
	entry, ok := p.languages.Lookup(code)
	if !ok {
		fmt.Fprintln(p.out, p.msg.T("UnknownLanguage", map[string]any{"Code": arg}))
		return "", "", false
	}
	return entry.Code, entry.Name, true
}
