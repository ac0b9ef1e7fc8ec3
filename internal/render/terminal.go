package render

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Terminal renders markdown with glamour when attached to a TTY and as plain
// markdown otherwise.
type Terminal struct {
	renderer *glamour.TermRenderer
}

// NewTerminal inspects f to decide between styled and plain output.
func NewTerminal(f *os.File) *Terminal {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return &Terminal{}
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width < 40 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return &Terminal{}
	}
	return &Terminal{renderer: renderer}
}

// Render returns e as terminal text.
func (t *Terminal) Render(e *Explanation) string {
	md := Markdown(e)
	if t.renderer == nil {
		return md
	}
	out, err := t.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
