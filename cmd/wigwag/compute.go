package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RMahshie/wigwag/internal/app"
	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/processing"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute noise curves and source points for a configuration",
	Long: `Compute builds the instrumental and confusion noise for the chosen noise
budget and mission duration, and the characteristic strain and SNR of the
selected catalog sources. The result is written to stdout as JSON.`,
	Example: `  wigwag compute --budget scird --duration 7.5 --source AMCVn --source HMCnc
  wigwag compute --budget redbook --duration 4.5 --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, _ := cmd.Flags().GetString("budget")
		duration, _ := cmd.Flags().GetFloat64("duration")
		sources, _ := cmd.Flags().GetStringSlice("source")
		all, _ := cmd.Flags().GetBool("all")
		pointsOnly, _ := cmd.Flags().GetBool("sources-only")

		noiseCfg, err := noise.NewConfiguration(budget, duration)
		if err != nil {
			return err
		}
		sel := catalog.NewSelection(sources...)
		if all {
			sel = catalog.All()
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Sensitivity.Compute(cmd.Context(), processing.Request{Configuration: noiseCfg, Selection: sel})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if pointsOnly {
			return enc.Encode(result.Sources)
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return nil
	},
}

func init() {
	computeCmd.Flags().String("budget", string(noise.SciRD), "noise budget: redbook or scird")
	computeCmd.Flags().Float64("duration", 4.5, "mission duration in years")
	computeCmd.Flags().StringSlice("source", nil, "source name to include (repeatable)")
	computeCmd.Flags().Bool("all", false, "include every catalog source")
	computeCmd.Flags().Bool("sources-only", false, "print only the source points")

	rootCmd.AddCommand(computeCmd)
}
