// Package main is the entry point for the MetaNet client.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/billie-coop/metanet/internal/app"
	"github.com/billie-coop/metanet/internal/config"
	"github.com/billie-coop/metanet/internal/logging"
	"github.com/billie-coop/metanet/internal/tui"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configDir string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "metanet",
		Short:         "MetaNet client permission manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, nil)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultDir(), "directory holding config, logs and the local host")

	cmd.AddCommand(newDemoCmd(opts), newCacheCmd(opts), newVersionCmd())
	return cmd
}

func newDemoCmd(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the client with simulated permission requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, func(ctx context.Context, a *app.App) {
				app.NewSimulator(a, app.DemoSteps(), interval).Run(ctx)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 3*time.Second, "delay between simulated requests")
	return cmd
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the display metadata cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached label and icon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, closeLog, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer closeLog.Close()
			defer a.Close()

			if err := a.Cache.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared the %s cache\n", a.Config.Get().Cache.Backend)
			return nil
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metanet %s\n", version)
		},
	}
}

// openApp loads config, opens the log file and builds the app. The terminal
// belongs to the TUI, so logs only go to the file.
func openApp(ctx context.Context, opts *rootOptions) (*app.App, io.Closer, error) {
	m := config.NewManager(opts.configDir)
	if err := m.Load(); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.Open(m.LogPath(), m.Get().LogLevel)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	a, err := app.New(ctx, app.Options{
		Config:  m,
		Logger:  logger,
		Version: version,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return a, closer, nil
}

// runTUI runs the shell until the user quits. background, when set, runs
// alongside it and is cancelled on exit.
func runTUI(ctx context.Context, opts *rootOptions, background func(context.Context, *app.App)) error {
	a, closeLog, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}

	model := tui.New(ctx, a)
	defer model.Close()

	done := make(chan struct{})
	if background != nil {
		go func() {
			defer close(done)
			background(ctx, a)
		}()
	} else {
		close(done)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	interrupted := ctx.Err() != nil
	cancel()
	<-done
	if err != nil && !interrupted {
		return fmt.Errorf("run tui: %w", err)
	}
	a.Logger.Info("client stopped")
	return nil
}
