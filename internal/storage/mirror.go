package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

var contentTypes = map[string]string{
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".csv":  "text/csv",
	".npy":  "application/octet-stream",
}

// ContentType guesses the content type of key from its extension.
func ContentType(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Mirror copies every file of src to dst under the same key and returns the
// number of files copied.
func Mirror(ctx context.Context, src *FileStore, dst Store) (int, error) {
	keys, err := src.Walk()
	if err != nil {
		return 0, err
	}

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := copyFile(ctx, src, dst, key); err != nil {
			return i, err
		}
		log.Debug().Str("key", key).Msg("Mirrored data file")
	}
	return len(keys), nil
}

func copyFile(ctx context.Context, src *FileStore, dst Store, key string) error {
	p, err := src.resolve(key)
	if err != nil {
		return err
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", key, err)
	}
	if err := dst.Put(ctx, key, f, info.Size(), ContentType(key)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}
