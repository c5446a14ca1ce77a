package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"cardlink/debug"
	"cardlink/viewer"
)

func viewCmd(a *app) *cobra.Command {
	var poll time.Duration
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse recorded sessions in the terminal",
		Long: `Open an interactive viewer over the session history. The history is
re-read on every poll so sessions recorded elsewhere in this process show up.

` + viewer.HelpLine,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("poll") {
				a.cfg.Viewer.PollInterval = poll
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()

			// Log lines would tear the screen while it is active.
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			rec := debug.NewRecorder(a.store, debug.Options{
				MaxSessions: a.cfg.Debug.MaxSessions,
				Logger:      quiet,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			v := viewer.New(screen, rec, viewer.Options{
				PollInterval: a.cfg.Viewer.PollInterval,
				Logger:       quiet,
			})
			if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "history poll interval (default from config)")
	return cmd
}
