package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"cardlink/debug"
	"cardlink/export"
)

var errNoSessions = errors.New("no recorded sessions")

// pickSession resolves an index into the history. Negative indexes count
// from the newest session, so -1 is the latest.
func pickSession(sessions []debug.Session, index int) (debug.Session, error) {
	if len(sessions) == 0 {
		return debug.Session{}, errNoSessions
	}
	i := index
	if i < 0 {
		i += len(sessions)
	}
	if i < 0 || i >= len(sessions) {
		return debug.Session{}, fmt.Errorf("session index %d out of range (have %d)", index, len(sessions))
	}
	return sessions[i], nil
}

func sessionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Inspect recorded routing sessions",
	}
	cmd.AddCommand(sessionsListCmd(a), sessionsShowCmd(a), sessionsClearCmd(a), sessionsExportCmd(a))
	return cmd
}

func sessionsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions := a.recorder.Sessions()
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), errNoSessions.Error())
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTIME\tLINK\tSTRATEGY\tSTEPS\tREJECTED")
			for i, s := range sessions {
				fmt.Fprintf(tw, "%d\t%s\t%s -> %s\t%s\t%d\t%d\n",
					i,
					time.UnixMilli(s.Timestamp).UTC().Format(time.RFC3339),
					dash(s.SourceID), dash(s.TargetID),
					dash(s.FinalStrategy),
					len(s.Steps), s.RejectedCount())
			}
			return tw.Flush()
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func parseIndex(args []string) (int, error) {
	if len(args) == 0 {
		return -1, nil
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid session index %q", args[0])
	}
	return i, nil
}

func sessionsShowCmd(a *app) *cobra.Command {
	var cols, rows int
	cmd := &cobra.Command{
		Use:   "show [index]",
		Short: "Draw a session and its decision steps (default latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args)
			if err != nil {
				return err
			}
			s, err := pickSession(a.recorder.Sessions(), index)
			if err != nil {
				return err
			}
			exp := &export.ASCIIExporter{Cols: cols, Rows: rows}
			return exp.Export(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().IntVar(&cols, "cols", 80, "drawing width")
	cmd.Flags().IntVar(&rows, "rows", 24, "drawing height")
	return cmd
}

func sessionsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n := len(a.recorder.Sessions())
			a.recorder.ClearSessions()
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d sessions\n", n)
			return nil
		},
	}
}

func sessionsExportCmd(a *app) *cobra.Command {
	var (
		formatName string
		output     string
		index      int
		all        bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session as json, ascii or png",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			sessions := a.recorder.Sessions()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if all {
				if format != export.FormatJSON {
					return fmt.Errorf("--all is only supported for %s", export.FormatJSON)
				}
				return export.NewJSONExporter().ExportAll(w, sessions)
			}

			s, err := pickSession(sessions, index)
			if err != nil {
				return err
			}
			exp, err := export.NewExporter(format)
			if err != nil {
				return err
			}
			if err := exp.Export(w, s); err != nil {
				return fmt.Errorf("export %s: %w", exp.FormatName(), err)
			}
			if output != "" && output != "-" {
				a.logger.Info("session exported", "file", output, "format", exp.FormatName(), "session", s.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "json", "json, ascii or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&index, "index", "i", -1, "session index; negative counts from the latest")
	cmd.Flags().BoolVar(&all, "all", false, "export the whole history (json only)")
	return cmd
}
