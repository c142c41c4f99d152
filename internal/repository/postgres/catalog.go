package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/RMahshie/wigwag/internal/repository"
	"github.com/RMahshie/wigwag/pkg/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS galactic_binaries (
		position             BIGSERIAL PRIMARY KEY,
		name                 TEXT NOT NULL UNIQUE,
		frequency            DOUBLE PRECISION NOT NULL,
		frequency_derivative DOUBLE PRECISION NOT NULL,
		amplitude            DOUBLE PRECISION NOT NULL,
		ecliptic_latitude    DOUBLE PRECISION NOT NULL,
		ecliptic_longitude   DOUBLE PRECISION NOT NULL,
		polarization         DOUBLE PRECISION NOT NULL,
		inclination          DOUBLE PRECISION NOT NULL,
		initial_phase        DOUBLE PRECISION NOT NULL
	)`

// PostgresCatalogRepository implements CatalogRepository for PostgreSQL
type PostgresCatalogRepository struct {
	db *sql.DB
}

// NewPostgresCatalogRepository creates a new PostgreSQL catalog repository
func NewPostgresCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

// EnsureSchema creates the catalog table if it is missing
func (r *PostgresCatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create galactic_binaries: %w", err)
	}
	return nil
}

// List returns every source in insertion order
func (r *PostgresCatalogRepository) List(ctx context.Context) ([]models.SourceRecord, error) {
	query := `
		SELECT name, frequency, frequency_derivative, amplitude, ecliptic_latitude,
		       ecliptic_longitude, polarization, inclination, initial_phase
		FROM galactic_binaries
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.SourceRecord
	for rows.Next() {
		var rec models.SourceRecord
		err := rows.Scan(
			&rec.Name,
			&rec.Frequency,
			&rec.FrequencyDerivative,
			&rec.Amplitude,
			&rec.EclipticLatitude,
			&rec.EclipticLongitude,
			&rec.Polarization,
			&rec.Inclination,
			&rec.InitialPhase)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert inserts records, updating the parameters of names already present
func (r *PostgresCatalogRepository) Upsert(ctx context.Context, records []models.SourceRecord) error {
	query := `
		INSERT INTO galactic_binaries (name, frequency, frequency_derivative, amplitude,
			ecliptic_latitude, ecliptic_longitude, polarization, inclination, initial_phase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			frequency = EXCLUDED.frequency,
			frequency_derivative = EXCLUDED.frequency_derivative,
			amplitude = EXCLUDED.amplitude,
			ecliptic_latitude = EXCLUDED.ecliptic_latitude,
			ecliptic_longitude = EXCLUDED.ecliptic_longitude,
			polarization = EXCLUDED.polarization,
			inclination = EXCLUDED.inclination,
			initial_phase = EXCLUDED.initial_phase`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Name,
			rec.Frequency,
			rec.FrequencyDerivative,
			rec.Amplitude,
			rec.EclipticLatitude,
			rec.EclipticLongitude,
			rec.Polarization,
			rec.Inclination,
			rec.InitialPhase)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", rec.Name, err)
		}
	}
	return tx.Commit()
}

// Delete removes a source by name
func (r *PostgresCatalogRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM galactic_binaries WHERE name = $1`, name)
	return err
}
