package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wigwag/internal/catalog"
	"github.com/RMahshie/wigwag/internal/config"
	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/processing"
)

func fileConfig() *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{Source: config.CatalogFile, Path: "../../data/verification_binaries.csv"},
		Data:    config.DataConfig{ConfigPath: "../../data/configuration.yaml", Root: "../../data"},
		Grid:    config.GridConfig{MinFrequency: 1e-5, MaxFrequency: 1, Points: 500},
		Synth:   config.SynthConfig{Samples: 1024},
	}
}

func TestNew_BundledData(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, fileConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 10, a.Catalog.Len())
	assert.Equal(t, 500, a.Grid.Len())
	assert.NotEmpty(t, a.Table.Sections())

	cfg, err := noise.NewConfiguration("scird", 7.5)
	require.NoError(t, err)
	res, err := a.Sensitivity.Compute(ctx, processing.Request{Configuration: cfg, Selection: catalog.All()})
	require.NoError(t, err)
	assert.Len(t, res.Sources, 10)
	assert.Empty(t, res.Skipped)

	// every configured waterfall resolves and decodes
	for _, key := range a.Table.Keys(datafiles.WaterfallSection) {
		c, err := a.Waterfall.Contour(ctx, key)
		require.NoError(t, err, key.String())
		assert.Len(t, c.Log10SNR, len(c.Redshift))
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing catalog", mutate: func(c *config.Config) { c.Catalog.Path = "../../data/nope.csv" }},
		{name: "missing data config", mutate: func(c *config.Config) { c.Data.ConfigPath = "../../data/nope.yaml" }},
		{name: "bad grid", mutate: func(c *config.Config) { c.Grid.MaxFrequency = c.Grid.MinFrequency }},
		{name: "unknown source", mutate: func(c *config.Config) { c.Catalog.Source = "ftp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fileConfig()
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestS3Config(t *testing.T) {
	cfg := fileConfig()
	cfg.AWS = config.AWSConfig{Region: "eu-west-1", S3Bucket: "lisa", S3Endpoint: "localhost:9000", AccessKeyID: "k", SecretAccessKey: "s"}

	s3 := S3Config(cfg)
	assert.Equal(t, "lisa", s3.Bucket)
	assert.Equal(t, "localhost:9000", s3.Endpoint)
	assert.Equal(t, "k", s3.AccessKey)
	assert.Equal(t, "s", s3.SecretKey)
}
