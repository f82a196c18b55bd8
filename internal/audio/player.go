package audio

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Player starts playback of an audio file
type Player interface {
	Play(path string) (Playback, error)
}

// Playback is one running playback
type Playback interface {
	// Stop ends playback early; stopping a finished playback is a no-op
	Stop() error

	// Done is closed when playback ends for any reason
	Done() <-chan struct{}
}

// ExecPlayer plays files through a platform command line player
type ExecPlayer struct {
	lookPath func(string) (string, error)
}

// NewExecPlayer creates a player that uses the first available system player
func NewExecPlayer() *ExecPlayer {
	return &ExecPlayer{lookPath: exec.LookPath}
}

// Command returns the command that would play path on this platform
func (p *ExecPlayer) Command(path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("afplay", path), nil
	case "linux", "freebsd", "openbsd":
		// mpg123 first since it handles MP3 files best
		candidates := [][]string{
			{"mpg123", "-q", path},
			{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path},
			{"play", "-q", path},
			{"paplay", path},
			{"aplay", "-q", path},
		}
		for _, c := range candidates {
			if _, err := p.lookPath(c[0]); err == nil {
				return exec.Command(c[0], c[1:]...), nil
			}
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		return exec.Command("cmd", "/c", "start", "/min", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Play implements Player
func (p *ExecPlayer) Play(path string) (Playback, error) {
	cmd, err := p.Command(path)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	pb := &execPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		cmd.Wait()
		close(pb.done)
	}()

	return pb, nil
}

type execPlayback struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (p *execPlayback) Stop() error {
	var err error
	p.once.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		if p.cmd.Process != nil {
			err = p.cmd.Process.Kill()
		}
		<-p.done
	})
	return err
}

func (p *execPlayback) Done() <-chan struct{} {
	return p.done
}
