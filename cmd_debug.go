package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func debugCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Turn routing decision recording on or off",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "enable",
		Short: "Record a session for every routed connector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.recorder.Enable()
			fmt.Fprintln(cmd.OutOrStdout(), "routing debug recording enabled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Stop recording sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.recorder.Disable()
			fmt.Fprintln(cmd.OutOrStdout(), "routing debug recording disabled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether recording is on and how many sessions are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := "off"
			if a.recorder.IsEnabled() {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recording: %s\nsessions:  %d/%d\n",
				state, len(a.recorder.Sessions()), a.cfg.Debug.MaxSessions)
			return nil
		},
	})
	return cmd
}
