// Command plantasia plays the generative voice engine from the terminal.
//
// Usage:
//
//	plantasia play [--preset plants] [--bpm 90] [--no-tui] [--midi-port name]
//	plantasia presets [--json] [--presets file.json]
//	plantasia ports
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plantasia",
		Short: "Generative ambient voice synthesizer",
		Long: `Plantasia plays scale notes on a tempo grid through a small
polyphonic voice engine, and accepts notes and controllers from a MIDI input.

Examples:
  plantasia play --preset mushrooms --bpm 72
  plantasia play --no-tui --midi-port keystep
  plantasia presets --json > presets.json`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newPlayCmd(), newPresetsCmd(), newPortsCmd())
	return root
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", what, err)
}
