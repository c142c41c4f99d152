// Package main is the entry point for the wigwag CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RMahshie/wigwag/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded before every subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wigwag",
	Short: "LISA sensitivity and galactic binary tools",
	Long: `wigwag computes LISA noise curves, the sky-averaged response and the
characteristic strain and SNR of verification galactic binaries. The same
computations back the HTTP API served by cmd/server.

Configuration comes from the environment and .env.<ENVIRONMENT> files,
the same way as the server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		level := cfg.Server.LogLevel
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		return nil
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("catalog", "", "catalog file, overrides CATALOG_PATH")
	rootCmd.PersistentFlags().String("data-config", "", "data-file table, overrides DATA_CONFIG_PATH")
	viper.BindPFlag("CATALOG_PATH", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("DATA_CONFIG_PATH", rootCmd.PersistentFlags().Lookup("data-config"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
