package catalog

import (
	"context"
	"fmt"

	"github.com/RMahshie/wigwag/internal/repository"
	"github.com/RMahshie/wigwag/internal/storage"
)

// FromStore reads the catalog stored under key, choosing the format from its
// extension.
func FromStore(ctx context.Context, store storage.Store, key string) (*Catalog, error) {
	format, err := FormatFromPath(key)
	if err != nil {
		return nil, err
	}
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}
	defer rc.Close()

	c, err := Read(rc, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return c, nil
}

// FromRepository builds the catalog from persisted records.
func FromRepository(ctx context.Context, repo repository.CatalogRepository) (*Catalog, error) {
	records, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}
	return New(records)
}
