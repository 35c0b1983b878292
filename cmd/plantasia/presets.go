package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-synth/synth/preset"
)

func newPresetsCmd() *cobra.Command {
	var (
		asJSON bool
		file   string
	)
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the preset table",
		Long: `List the built-in presets, merged with a preset file when given.

Examples:
  plantasia presets
  plantasia presets --presets mine.json
  plantasia presets --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadPresets(file)
			if err != nil {
				return err
			}
			if asJSON {
				return wrap("encode presets", table.Encode(cmd.OutOrStdout()))
			}
			return wrap("write presets", printPresets(cmd.OutOrStdout(), table))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	cmd.Flags().StringVar(&file, "presets", "", "JSON preset file merged over the built-ins")
	return cmd
}

func loadPresets(file string) (*preset.Table, error) {
	table := preset.Default()
	if file == "" {
		return table, nil
	}
	extra, err := preset.LoadJSON(file)
	if err != nil {
		return nil, wrap("load presets", err)
	}
	return table.Merge(extra), nil
}

func printPresets(w io.Writer, t *preset.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Name\tWave\tScale [Hz]\tADSR [s]\tDetune [ct]\tFilter\tCutoff\tRes\tDrive\tPan\tColor\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t----\t----------\t--------\t-----------\t------\t------\t---\t-----\t---\t-----\n"); err != nil {
		return err
	}
	for _, p := range t.All() {
		e := p.Envelope
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%g/%g/%g/%g\t%s x%d\t%s\t%g\t%.2f\t%.2f\t%s\t%s\n",
			p.Name,
			p.Waveform,
			join(p.Scale),
			e.Attack, e.Decay, e.Sustain, e.Release,
			join(p.Detune), p.Fatness,
			p.Filter,
			p.Cutoff,
			p.Resonance,
			p.Drive,
			p.Pan,
			p.Color,
		); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func join(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ",")
}
