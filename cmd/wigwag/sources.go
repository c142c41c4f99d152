package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RMahshie/wigwag/internal/app"
	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/config"
	"github.com/RMahshie/wigwag/internal/repository/postgres"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the verification binary catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		asCSV, _ := cmd.Flags().GetBool("csv")

		cat, closeFn, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if asCSV {
			return catalog.WriteCSV(os.Stdout, cat.Records())
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFREQUENCY [Hz]\tFDOT [Hz/s]\tAMPLITUDE")
		for _, r := range cat.Records() {
			fmt.Fprintf(w, "%s\t%.6g\t%.3g\t%.3g\n", r.Name, r.Frequency, r.FrequencyDerivative, r.Amplitude)
		}
		return w.Flush()
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a catalog file into Postgres",
	Long: `Import reads a .npy or .csv catalog and upserts its records into the
galactic_binaries table of DATABASE_URL. Existing sources keep their
position and get their parameters updated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return err
		}

		db, err := app.OpenDB(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := postgres.NewPostgresCatalogRepository(db)
		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		if err := repo.Upsert(cmd.Context(), cat.Records()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "imported %d sources\n", cat.Len())
		return nil
	},
}

// loadCatalog reads the catalog from the configured source without
// building the computation services.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, func(), error) {
	ctx := cmd.Context()
	switch cfg.Catalog.Source {
	case config.CatalogPostgres:
		db, err := app.OpenDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		cat, err := catalog.FromRepository(ctx, postgres.NewPostgresCatalogRepository(db))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return cat, func() { db.Close() }, nil
	case config.CatalogS3:
		store, err := app.DataStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cat, err := catalog.FromStore(ctx, store, cfg.Catalog.Path)
		return cat, func() {}, err
	default:
		cat, err := catalog.Load(cfg.Catalog.Path)
		return cat, func() {}, err
	}
}

func init() {
	sourcesCmd.Flags().Bool("csv", false, "write the catalog as CSV")

	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(importCmd)
}
