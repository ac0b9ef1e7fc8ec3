// Package cli holds the jargone commands.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/comigor/jargone-go/internal/config"
	"github.com/comigor/jargone-go/internal/dispatcher"
	"github.com/comigor/jargone-go/internal/history"
	"github.com/comigor/jargone-go/internal/llm"
	"github.com/comigor/jargone-go/internal/logger"
	"github.com/comigor/jargone-go/internal/relay"
	"github.com/comigor/jargone-go/internal/storage"
)

// Version is set at build time.
var Version = "dev"

const skipSetup = "jargone/skip-setup"

// app is the state shared by commands once setup has run.
type app struct {
	cfg      *config.Config
	kv       storage.Store
	history  *history.Store
	profiles *history.Profiles
	openURL  func(url string) error
	// newExplainer and clipboard are replaced in tests.
	newExplainer func(cfg *config.Config) dispatcher.Explainer
	clipboard    func() relay.Source
}

func (a *app) explainer() dispatcher.Explainer {
	return a.newExplainer(a.cfg)
}

func defaultExplainer(cfg *config.Config) dispatcher.Explainer {
	if cfg.Provider.Name == config.ProviderOpenAI {
		return dispatcher.NewOpenAIExplainer(llm.NewClient(cfg.LLM), cfg.LLM.Model)
	}
	return dispatcher.NewHTTPClient(cfg.Service.URL)
}

func newApp() *app {
	return &app{
		openURL:      browser.OpenURL,
		newExplainer: defaultExplainer,
		clipboard:    func() relay.Source { return relay.NewClipboard() },
	}
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "jargone [text...]",
		Short: "Decode the jargon in a piece of text",
		Long: `Decode the jargon in a piece of text.

The text is taken from the arguments, from piped stdin, or from the desktop
primary selection, in that order. The explanation is saved to the local
history together with the level, role and context used.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipSetup] == "true" {
				return nil
			}
			return a.setup(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default ./config.yaml or ~/.jargone/config.yaml)")

	addExplainFlags(root, a)
	root.AddCommand(
		newHistoryCmd(a),
		newProfileCmd(a),
		newDoctorCmd(a),
		newMCPCmd(a),
		newCompletionCmd(),
	)
	return root
}

func (a *app) setup(configPath string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.L.Warn("could not load .env", "error", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	a.cfg = cfg
	a.kv = storage.Open(cfg.Storage.Path)
	a.history = history.New(a.kv)
	a.profiles = history.NewProfiles(a.kv)
	return nil
}

// execute runs cmd and closes the store whether or not the command failed.
func (a *app) execute(ctx context.Context, cmd *cobra.Command) error {
	defer a.close()
	return cmd.ExecuteContext(ctx)
}

func (a *app) close() {
	if a.kv == nil {
		return
	}
	if err := a.kv.Close(); err != nil {
		logger.L.Warn("closing storage failed", "error", err)
	}
	a.kv = nil
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	a := newApp()
	if err := a.execute(context.Background(), newRootCmd(a)); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
		os.Exit(1)
	}
}
