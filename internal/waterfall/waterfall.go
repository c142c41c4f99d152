// Package waterfall serves the precomputed SNR waterfall meshes (SNR over
// redshift and total mass) as contour data.
package waterfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RMahshie/wigwag/internal/datafiles"
	"github.com/RMahshie/wigwag/internal/storage"
	"github.com/RMahshie/wigwag/pkg/models"
)

// SNR clipping range of the contour panel.
const (
	MinSNR = 1.0
	MaxSNR = 4000.0
)

// TickValues are the colorbar labels.
var TickValues = []float64{10, 20, 50, 100, 200, 500, 1000, 4000}

// ErrInvalidMesh is returned for a data file whose meshes are unusable.
var ErrInvalidMesh = errors.New("invalid waterfall mesh")

// Mesh is the decoded data file. Aux holds auxiliary arrays that are not
// displayed.
type Mesh struct {
	Redshift  [][]float64       `json:"redshift"`
	TotalMass [][]float64       `json:"total_mass"`
	SNR       [][]float64       `json:"snr"`
	Aux       []json.RawMessage `json:"aux,omitempty"`
}

// Decode parses and validates a waterfall data file.
func Decode(data []byte) (*Mesh, error) {
	var m Mesh
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMesh, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Mesh) validate() error {
	rows := len(m.SNR)
	if rows == 0 || len(m.SNR[0]) == 0 {
		return fmt.Errorf("%w: empty snr mesh", ErrInvalidMesh)
	}
	cols := len(m.SNR[0])
	for name, mesh := range map[string][][]float64{"redshift": m.Redshift, "total_mass": m.TotalMass, "snr": m.SNR} {
		if len(mesh) != rows {
			return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalidMesh, name, len(mesh), rows)
		}
		for i, row := range mesh {
			if len(row) != cols {
				return fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrInvalidMesh, name, i, len(row), cols)
			}
		}
	}
	return nil
}

// Contour converts the mesh to contour-panel data.
func (m *Mesh) Contour() models.WaterfallContour {
	out := models.WaterfallContour{
		TotalMass:     append([]float64(nil), m.TotalMass[0]...),
		Redshift:      make([]float64, len(m.Redshift)),
		Log10SNR:      make([][]float64, len(m.SNR)),
		TickValues:    append([]float64(nil), TickValues...),
		TickPositions: make([]float64, len(TickValues)),
	}
	for i, row := range m.Redshift {
		out.Redshift[i] = row[0]
	}
	for i, row := range m.SNR {
		out.Log10SNR[i] = make([]float64, len(row))
		for j, v := range row {
			out.Log10SNR[i][j] = math.Log10(clip(v))
		}
	}
	for i, v := range TickValues {
		out.TickPositions[i] = math.Log10(v)
	}
	return out
}

func clip(v float64) float64 {
	switch {
	case math.IsNaN(v), v < MinSNR:
		return MinSNR
	case v > MaxSNR:
		return MaxSNR
	}
	return v
}

// Service resolves and loads waterfall data files. Decoded meshes are
// cached by path.
type Service struct {
	table *datafiles.Table
	store storage.Store

	mu     sync.RWMutex
	meshes map[string]*Mesh
}

// NewService returns a waterfall service reading files listed in table from store.
func NewService(table *datafiles.Table, store storage.Store) *Service {
	return &Service{table: table, store: store, meshes: make(map[string]*Mesh)}
}

// Contour returns the contour data for key.
func (s *Service) Contour(ctx context.Context, key datafiles.Key) (*models.WaterfallContour, error) {
	path, err := s.table.Lookup(datafiles.WaterfallSection, key)
	if err != nil {
		return nil, err
	}

	mesh, err := s.mesh(ctx, path)
	if err != nil {
		return nil, err
	}

	contour := mesh.Contour()
	contour.Configuration = models.Configuration{NoiseBudget: string(key.Budget), DurationYears: key.Duration}
	return &contour, nil
}

func (s *Service) mesh(ctx context.Context, path string) (*Mesh, error) {
	s.mu.RLock()
	m, ok := s.meshes[path]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	data, err := storage.ReadFile(ctx, s.store, path)
	if err != nil {
		return nil, fmt.Errorf("load waterfall %s: %w", path, err)
	}
	m, err = Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load waterfall %s: %w", path, err)
	}

	s.mu.Lock()
	s.meshes[path] = m
	s.mu.Unlock()
	return m, nil
}
