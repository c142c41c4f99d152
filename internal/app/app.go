// Package app wires the configured catalog, data files and computation
// services together for the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/config"
	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/grid"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/processing"
	"github.com/RMahshie/wigwag/internal/repository"
	"github.com/RMahshie/wigwag/internal/repository/postgres"
	"github.com/RMahshie/wigwag/internal/response"
	"github.com/RMahshie/wigwag/internal/storage"
	"github.com/RMahshie/wigwag/internal/synth"
	"github.com/RMahshie/wigwag/internal/waterfall"
)

// App holds the read-only state shared by all requests.
type App struct {
	Catalog     *catalog.Catalog
	Grid        *grid.Frequency
	Response    *response.Function
	Table       *datafiles.Table
	Store       storage.Store
	Sensitivity processing.SensitivityService
	Waterfall   *waterfall.Service

	db *sql.DB
}

// S3Config returns the S3 settings of cfg.
func S3Config(cfg *config.Config) storage.S3Config {
	return storage.S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	}
}

// OpenDB opens and pings the Postgres database.
func OpenDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// DataStore returns the store data files and file catalogs are read from.
func DataStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Catalog.Source == config.CatalogS3 {
		return storage.NewS3Store(ctx, S3Config(cfg))
	}
	return storage.NewFileStore(cfg.Data.Root), nil
}

// New loads the catalog and data-file table and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	store, err := DataStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	// Step 1: Source catalog
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		a.Catalog, err = catalog.Load(cfg.Catalog.Path)
	case config.CatalogS3:
		a.Catalog, err = catalog.FromStore(ctx, store, cfg.Catalog.Path)
	case config.CatalogPostgres:
		a.db, err = OpenDB(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		var repo repository.CatalogRepository = postgres.NewPostgresCatalogRepository(a.db)
		if err = repo.EnsureSchema(ctx); err == nil {
			a.Catalog, err = catalog.FromRepository(ctx, repo)
		}
	default:
		err = fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info().Str("source", cfg.Catalog.Source).Int("records", a.Catalog.Len()).Msg("Catalog loaded")

	// Step 2: Data-file table
	a.Table, err = datafiles.Load(cfg.Data.ConfigPath)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Step 3: Frequency grid and response
	a.Grid, err = grid.NewLog(cfg.Grid.MinFrequency, cfg.Grid.MaxFrequency, cfg.Grid.Points)
	if err != nil {
		a.Close()
		return nil, err
	}
	opts := response.DefaultOptions()
	opts.MinFrequency = a.Grid.Min()
	opts.MaxFrequency = a.Grid.Max()
	a.Response, err = response.New(opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	synthOpts := synth.DefaultOptions()
	if cfg.Synth.Samples > 0 {
		synthOpts.Samples = cfg.Synth.Samples
	}
	a.Sensitivity, err = processing.NewSensitivityService(processing.Deps{
		Catalog:   a.Catalog,
		Grid:      a.Grid,
		Response:  a.Response,
		Noise:     noise.NewCache(),
		SynthOpts: synthOpts,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Waterfall = waterfall.NewService(a.Table, store)

	log.Info().Int("grid_points", a.Grid.Len()).Int("anchors", opts.Anchors).Msg("Services ready")
	return a, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
