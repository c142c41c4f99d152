package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RMahshie/wigwag/pkg/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("wigwag_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCatalogRepository_Integration round-trips a catalog through PostgreSQL
func TestCatalogRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	repo := NewPostgresCatalogRepository(setupDB(t))
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	records := []models.SourceRecord{
		{Name: "V407Vul", Frequency: 3.51e-3, FrequencyDerivative: 9.6e-18, Amplitude: 1.1e-22, EclipticLatitude: 0.8, EclipticLongitude: 5.0, Polarization: 1.2, Inclination: 1.05, InitialPhase: 2.0},
		{Name: "HMCnc", Frequency: 6.22e-3, FrequencyDerivative: 3.57e-16, Amplitude: 6.38e-23, EclipticLatitude: -0.08, EclipticLongitude: 2.1, Polarization: 0.5, Inclination: 0.66, InitialPhase: 1.0},
	}
	require.NoError(t, repo.Upsert(ctx, records))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	// update keeps the original position
	records[0].Amplitude = 2e-22
	require.NoError(t, repo.Upsert(ctx, records[:1]))
	got, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "V407Vul", got[0].Name)
	assert.Equal(t, 2e-22, got[0].Amplitude)

	require.NoError(t, repo.Delete(ctx, "V407Vul"))
	got, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.SourceRecord{records[1]}, got)
}
