package waterfall

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/internal/storage"
)

const meshJSON = `{
	"redshift":   [[0.5, 0.5, 0.5], [1.0, 1.0, 1.0]],
	"total_mass": [[1e4, 1e5, 1e6], [1e4, 1e5, 1e6]],
	"snr":        [[0.2, 150, 9000], [10, 4000, 1]],
	"aux":        [[1, 2], [3], {"note": "unused"}]
}`

const tableYAML = `
datafiles:
  SO2.waterfall:
    - noise_budget: redbook
      duration: 4.5
      path: redbook/waterfall.json
    - noise_budget: scird
      duration: 4.5
      path: scird/missing.json
`

func newService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	table, err := datafiles.Parse([]byte(tableYAML))
	require.NoError(t, err)
	store := storage.NewFileStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "redbook/waterfall.json", strings.NewReader(meshJSON), -1, "application/json"))
	return NewService(table, store)
}

func TestContour(t *testing.T) {
	svc := newService(t)

	c, err := svc.Contour(context.Background(), datafiles.Key{Budget: noise.Redbook, Duration: 4.5})
	require.NoError(t, err)

	assert.Equal(t, []float64{1e4, 1e5, 1e6}, c.TotalMass)
	assert.Equal(t, []float64{0.5, 1.0}, c.Redshift)
	assert.Equal(t, "redbook", c.Configuration.NoiseBudget)

	// clipped to [1, 4000] then log10
	assert.Equal(t, 0.0, c.Log10SNR[0][0])
	assert.InDelta(t, math.Log10(150), c.Log10SNR[0][1], 1e-12)
	assert.InDelta(t, math.Log10(4000), c.Log10SNR[0][2], 1e-12)
	assert.InDelta(t, 1.0, c.Log10SNR[1][0], 1e-12)

	assert.Equal(t, TickValues, c.TickValues)
	assert.InDelta(t, math.Log10(4000), c.TickPositions[len(c.TickPositions)-1], 1e-12)
}

func TestContour_CachesMesh(t *testing.T) {
	svc := newService(t)
	key := datafiles.Key{Budget: noise.Redbook, Duration: 4.5}

	first, err := svc.Contour(context.Background(), key)
	require.NoError(t, err)
	first.Log10SNR[0][0] = 99

	second, err := svc.Contour(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 0.0, second.Log10SNR[0][0])
	assert.Len(t, svc.meshes, 1)
}

func TestContour_Errors(t *testing.T) {
	svc := newService(t)

	_, err := svc.Contour(context.Background(), datafiles.Key{Budget: noise.SciRD, Duration: 7.5})
	assert.ErrorIs(t, err, datafiles.ErrConfigurationNotFound)

	_, err = svc.Contour(context.Background(), datafiles.Key{Budget: noise.SciRD, Duration: 4.5})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDecode_RejectsBadMeshes(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "empty", data: `{"redshift": [], "total_mass": [], "snr": []}`},
		{name: "row mismatch", data: `{"redshift": [[1]], "total_mass": [[1], [2]], "snr": [[1]]}`},
		{name: "ragged", data: `{"redshift": [[1, 2], [1]], "total_mass": [[1, 2], [1, 2]], "snr": [[1, 2], [1, 2]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidMesh)
		})
	}
}
