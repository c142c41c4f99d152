package storage

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "redbook/waterfall_4.5.json", strings.NewReader(`{"snr":[]}`), -1, "application/json"))

	data, err := ReadFile(ctx, store, "redbook/waterfall_4.5.json")
	require.NoError(t, err)
	assert.Equal(t, `{"snr":[]}`, string(data))

	keys, err := store.Walk()
	require.NoError(t, err)
	assert.Equal(t, []string{"redbook/waterfall_4.5.json"}, keys)

	require.NoError(t, store.Delete(ctx, "redbook/waterfall_4.5.json"))
	require.NoError(t, store.Delete(ctx, "redbook/waterfall_4.5.json"))

	_, err = store.Open(ctx, "redbook/waterfall_4.5.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_StaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewFileStore(root)

	require.NoError(t, store.Put(ctx, "../../escape.txt", strings.NewReader("x"), 1, ""))

	keys, err := store.Walk()
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.txt"}, keys)

	_, err = store.Open(ctx, "/")
	assert.Error(t, err)
}

// TestS3Store_Integration exercises the S3 store against a MinIO container
func TestS3Store_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	minioContainer, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-10-29T16-01-48Z",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, minioContainer.Terminate(ctx))
	}()

	minioURL, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := S3Config{
		Bucket:    "wigwag-test-" + uuid.New().String()[:8],
		Endpoint:  minioURL,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Prefix:    "data",
	}
	require.NoError(t, EnsureBucket(ctx, cfg))
	require.NoError(t, EnsureBucket(ctx, cfg))

	store, err := NewS3Store(ctx, cfg)
	require.NoError(t, err)

	payload := []byte("Name,Frequency\n")
	require.NoError(t, store.Put(ctx, "VGB.csv", bytes.NewReader(payload), int64(len(payload)), "text/csv"))

	data, err := ReadFile(ctx, store, "VGB.csv")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = store.Open(ctx, "missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "VGB.csv"))
	_, err = store.Open(ctx, "VGB.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
