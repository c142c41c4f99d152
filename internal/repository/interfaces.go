package repository

import (
	"context"

	"github.com/RMahshie/wigwag/pkg/models"
)

// CatalogRepository defines the interface for persisted source catalogs
type CatalogRepository interface {
	EnsureSchema(ctx context.Context) error
	List(ctx context.Context) ([]models.SourceRecord, error)
	Upsert(ctx context.Context, records []models.SourceRecord) error
	Delete(ctx context.Context, name string) error
}
