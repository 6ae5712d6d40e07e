// Package commands wires the CLI surface: the bare command launches the
// TUI, subcommands cover headless operations.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/betafactory/receipted/internal/api"
	"github.com/betafactory/receipted/internal/auth"
	"github.com/betafactory/receipted/internal/config"
	"github.com/betafactory/receipted/internal/fixture"
	"github.com/betafactory/receipted/internal/tui"
)

var mockFlag bool

var rootCmd = &cobra.Command{
	Use:   "receipted",
	Short: "Track receipts and spending from the terminal",
	Long: `receipted uploads receipt photos for extraction and browses the
resulting purchase history: weekly purchases, monthly and yearly
summaries, and per-item spending stats.

With --mock all data comes from a built-in offline dataset.`,
	Version:      "0.1.0",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if mockFlag {
			cfg.API.Mock = true
		}

		client, session := buildBackend(cfg)
		app := tui.New(cmd.Context(), cfg, client, session)
		_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
		return err
	},
}

// buildBackend selects the transport and session for the configured
// mode. Mock mode is fully offline: fixture data, always signed in.
func buildBackend(cfg config.Config) (*api.Client, tui.SessionState) {
	if cfg.API.Mock {
		transport := fixture.New(time.Duration(cfg.API.MockDelayMs) * time.Millisecond)
		return api.NewClient(transport), auth.Static{}
	}
	session := auth.NewSession(auth.Config{
		Domain:            cfg.Auth.Domain,
		ClientID:          cfg.Auth.ClientID,
		RedirectURL:       cfg.Auth.RedirectURL,
		LogoutRedirectURL: cfg.Auth.LogoutRedirectURL,
		Scopes:            cfg.Auth.Scopes,
	})
	transport := api.NewHTTPTransport(cfg.API.BaseURL, session)
	return api.NewClient(transport), session
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "serve built-in offline data instead of the live backend")
	rootCmd.AddCommand(uploadCmd)
}

var _ tui.SessionState = auth.Static{}

func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
