package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/RMahshie/wigwag/internal/app"
	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/waterfall"
)

var waterfallCmd = &cobra.Command{
	Use:   "waterfall",
	Short: "Print the SNR waterfall contour for a configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, _ := cmd.Flags().GetString("budget")
		duration, _ := cmd.Flags().GetString("duration")

		key, err := datafiles.NewKey(budget, duration)
		if err != nil {
			return err
		}
		table, err := datafiles.Load(cfg.Data.ConfigPath)
		if err != nil {
			return err
		}
		store, err := app.DataStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		contour, err := waterfall.NewService(table, store).Contour(cmd.Context(), key)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(contour)
	},
}

func init() {
	waterfallCmd.Flags().String("budget", "scird", "noise budget: redbook or scird")
	waterfallCmd.Flags().String("duration", "4.5", "mission duration in years")

	rootCmd.AddCommand(waterfallCmd)
}
