package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirror(t *testing.T) {
	ctx := context.Background()
	src := NewFileStore(t.TempDir())
	dst := NewFileStore(t.TempDir())

	require.NoError(t, src.Put(ctx, "configuration.yaml", strings.NewReader("datafiles: {}"), -1, ""))
	require.NoError(t, src.Put(ctx, "scird/waterfall_7.5.json", strings.NewReader(`{"snr":[[1]]}`), -1, ""))

	n, err := Mirror(ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := ReadFile(ctx, dst, "scird/waterfall_7.5.json")
	require.NoError(t, err)
	assert.Equal(t, `{"snr":[[1]]}`, string(data))
}

func TestMirror_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := NewFileStore(t.TempDir())
	require.NoError(t, src.Put(context.Background(), "a.csv", strings.NewReader("x"), 1, ""))

	n, err := Mirror(ctx, src, NewFileStore(t.TempDir()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("a/b.JSON"))
	assert.Equal(t, "text/csv", ContentType("catalog.csv"))
	assert.Equal(t, "application/octet-stream", ContentType("catalog.npy"))
	assert.Equal(t, "application/octet-stream", ContentType("README"))
}
