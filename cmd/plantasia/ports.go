package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-synth/internal/midiin"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI input ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports := midiin.Ports()
			if len(ports) == 0 {
				_, err := fmt.Fprintln(cmd.ErrOrStderr(), "no MIDI input ports")
				return err
			}
			for i, name := range ports {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
