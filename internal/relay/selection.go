// Package relay carries a selection from its source to the explanation
// backend and the backend's answer back to the caller.
package relay

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/comigor/jargone-go/internal/logger"
)

// Source is one way of reading the user's current selection.
type Source interface {
	Name() string
	// Available reports whether the source can be read at all.
	Available() bool
	Read(ctx context.Context) (string, error)
}

// Relay reads the selection from the first available source.
type Relay struct {
	sources []Source
}

func New(sources ...Source) *Relay {
	return &Relay{sources: sources}
}

// Selection returns the current selection, or "" when no source is
// available, the source fails, or nothing is selected.
func (r *Relay) Selection(ctx context.Context) string {
	for _, s := range r.sources {
		if s == nil || !s.Available() {
			continue
		}
		text, err := s.Read(ctx)
		if err != nil {
			logger.L.Warn("reading selection failed", "source", s.Name(), "error", err)
			return ""
		}
		logger.L.Debug("got selection", "source", s.Name(), "chars", len(text))
		return text
	}
	logger.L.Warn("no selection source available")
	return ""
}

// Static is a selection given up front, such as command arguments.
type Static string

func (s Static) Name() string                         { return "args" }
func (s Static) Available() bool                      { return s != "" }
func (s Static) Read(context.Context) (string, error) { return string(s), nil }

// Reader reads the whole selection from r, for example piped stdin. One
// trailing newline is dropped.
type Reader struct {
	r io.Reader
}

// NewReader returns a source over r; a nil r is never available.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (s *Reader) Name() string    { return "stdin" }
func (s *Reader) Available() bool { return s.r != nil }

func (s *Reader) Read(context.Context) (string, error) {
	b, err := io.ReadAll(s.r)
	if err != nil {
		return "", err
	}
	text := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

// clipboardCommands are tried in order; the first one on PATH is used.
var clipboardCommands = [][]string{
	{"wl-paste", "--primary", "--no-newline"},
	{"xclip", "-o", "-selection", "primary"},
	{"xsel", "--primary", "--output"},
	{"pbpaste"},
}

// Clipboard reads the desktop primary selection through a helper command.
type Clipboard struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewClipboard() *Clipboard {
	return &Clipboard{
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Available() bool {
	return c.command() != nil
}

func (c *Clipboard) Read(ctx context.Context) (string, error) {
	cmd := c.command()
	if cmd == nil {
		return "", nil
	}
	out, err := c.run(ctx, cmd[0], cmd[1:]...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Clipboard) command() []string {
	for _, cmd := range clipboardCommands {
		if _, err := c.lookPath(cmd[0]); err == nil {
			return cmd
		}
	}
	return nil
}
