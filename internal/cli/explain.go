package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/history"
	"github.com/comigor/jargone-go/internal/popup"
	"github.com/comigor/jargone-go/internal/relay"
	"github.com/comigor/jargone-go/internal/render"
)

var (
	errNoSelection = errors.New("no text selected")
	errBlocked     = errors.New("provider verification required")
	errFailed      = errors.New("explanation failed")
)

type explainFlags struct {
	level      string
	department string
	role       string
	context    string
	clipboard  bool
	output     string
}

func addExplainFlags(cmd *cobra.Command, a *app) {
	var f explainFlags
	cmd.Flags().StringVarP(&f.level, "level", "l", "", "Explanation level: basic, detailed or expert (default from profile)")
	cmd.Flags().StringVar(&f.department, "department", "", "Department hint for services that expect it")
	cmd.Flags().StringVarP(&f.role, "role", "r", "", "Your role (default from profile)")
	cmd.Flags().StringVarP(&f.context, "context", "c", "", "Additional context (default from profile)")
	cmd.Flags().BoolVar(&f.clipboard, "clipboard", false, "Read the desktop primary selection even when stdin is piped")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text", "Output format: text, html or json")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runExplain(cmd, a, f, args)
	}
}

func runExplain(cmd *cobra.Command, a *app, f explainFlags, args []string) error {
	switch f.output {
	case "text", "html", "json":
	default:
		return fmt.Errorf("unsupported output format %q", f.output)
	}
	if f.level != "" {
		if _, err := history.ParseLevel(f.level); err != nil {
			return err
		}
	}

	sources := []relay.Source{relay.Static(strings.Join(args, " "))}
	if f.clipboard {
		sources = append(sources, a.clipboard())
	} else {
		sources = append(sources, stdinSource(cmd.InOrStdin()), a.clipboard())
	}

	view := newView(cmd.OutOrStdout(), cmd.ErrOrStderr(), f.output)
	session := popup.New(
		relay.New(sources...),
		relay.NewWorker(a.explainer(), a.profiles),
		a.history,
		view,
		popup.Options{
			ExplanationLevel:  f.level,
			Department:        f.department,
			UserRole:          f.role,
			AdditionalContext: f.context,
			SiteURL:           a.cfg.Provider.SiteURL,
			BlockedDelay:      a.cfg.Provider.BlockedDelay,
			OpenURL:           a.openURL,
		},
	)

	res, err := session.Run(cmd.Context())
	if err != nil {
		return err
	}
	switch res.State {
	case popup.StateNoSelection:
		return errNoSelection
	case popup.StateBlocked:
		return errBlocked
	case popup.StateFailed:
		return errFailed
	}
	return nil
}

// stdinSource is available when stdin is a pipe or a regular file. A
// terminal, /dev/null or a socket leaves the selection to the clipboard.
func stdinSource(in io.Reader) relay.Source {
	f, ok := in.(*os.File)
	if !ok {
		return relay.NewReader(in)
	}
	info, err := f.Stat()
	if err != nil {
		return relay.NewReader(nil)
	}
	if mode := info.Mode(); mode&os.ModeNamedPipe == 0 && !mode.IsRegular() {
		return relay.NewReader(nil)
	}
	return relay.NewReader(f)
}

// view prints session progress to errOut and the result to out.
type view struct {
	out      io.Writer
	errOut   io.Writer
	format   string
	terminal *render.Terminal
}

func newView(out, errOut io.Writer, format string) *view {
	v := &view{out: out, errOut: errOut, format: format, terminal: &render.Terminal{}}
	if f, ok := out.(*os.File); ok {
		v.terminal = render.NewTerminal(f)
	}
	return v
}

func (v *view) ShowSelection(text string) {
	pterm.Info.WithWriter(v.errOut).Printfln("Explaining: %s", truncate(text, 50))
}

func (v *view) ShowLoading() {
	pterm.Info.WithWriter(v.errOut).Println("Loading...")
}

func (v *view) ShowNoSelection() {
	pterm.Warning.WithWriter(v.errOut).Println("You have to first select some text")
}

func (v *view) ShowExplanation(e *render.Explanation, html string) {
	switch v.format {
	case "html":
		fmt.Fprintln(v.out, html)
	case "json":
		enc := json.NewEncoder(v.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(e); err != nil {
			pterm.Error.WithWriter(v.errOut).Println(err.Error())
		}
	default:
		fmt.Fprint(v.out, v.terminal.Render(e))
	}
}

func (v *view) ShowBlocked(siteURL string) {
	pterm.Warning.WithWriter(v.errOut).Printfln("You need to once visit %s and check if the connection is secure. Redirecting...", siteURL)
}

func (v *view) ShowError(msg string) {
	if v.format == "html" {
		fmt.Fprintln(v.out, render.Escape(msg))
	}
	pterm.Error.WithWriter(v.errOut).Println(msg)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
