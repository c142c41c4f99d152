// Package catalog loads the galactic-binary source catalog and resolves
// source selections against it.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/RMahshie/wigwag/pkg/models"
)

// ErrCatalogRead is returned for a missing, malformed or invalid catalog.
var ErrCatalogRead = errors.New("catalog read error")

// SelectAll is the selector entry that expands to every catalog source.
const SelectAll = "select all"

// Format is an on-disk catalog encoding.
type Format string

const (
	FormatNPY Format = "npy"
	FormatCSV Format = "csv"
)

// FormatFromPath infers the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return FormatNPY, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported catalog extension %q", ErrCatalogRead, filepath.Ext(path))
	}
}

// Load reads the catalog file at path.
func Load(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
	}
	defer f.Close()

	c, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Read decodes a catalog in the given format.
func Read(r io.Reader, format Format) (*Catalog, error) {
	var (
		records []models.SourceRecord
		err     error
	)
	switch format {
	case FormatNPY:
		records, err = readNPY(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrCatalogRead, format)
	}
	if err != nil {
		return nil, err
	}
	return New(records)
}

// Catalog is an ordered, name-unique, read-only sequence of sources.
type Catalog struct {
	records []models.SourceRecord
	index   map[string]int
}

// New validates records and builds a catalog preserving their order.
func New(records []models.SourceRecord) (*Catalog, error) {
	c := &Catalog{
		records: make([]models.SourceRecord, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if err := Validate(rec); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrCatalogRead, i, err)
		}
		if _, dup := c.index[rec.Name]; dup {
			return nil, fmt.Errorf("%w: row %d: duplicate source name %q", ErrCatalogRead, i, rec.Name)
		}
		c.index[rec.Name] = len(c.records)
		c.records = append(c.records, rec)
	}
	return c, nil
}

// Validate checks a single record.
func Validate(rec models.SourceRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return errors.New("empty source name")
	}
	if rec.Name == SelectAll {
		return fmt.Errorf("source name %q is reserved", SelectAll)
	}
	for _, field := range fields {
		v := field.get(&rec)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %s is not finite", rec.Name, field.name)
		}
	}
	if !(rec.Frequency > 0) {
		return fmt.Errorf("%s: frequency must be positive, got %g", rec.Name, rec.Frequency)
	}
	if rec.Amplitude < 0 {
		return fmt.Errorf("%s: amplitude must be non-negative, got %g", rec.Name, rec.Amplitude)
	}
	return nil
}

// Len returns the number of sources.
func (c *Catalog) Len() int { return len(c.records) }

// Records returns a copy of all records in catalog order.
func (c *Catalog) Records() []models.SourceRecord {
	return append([]models.SourceRecord(nil), c.records...)
}

// Names returns the source names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.records))
	for i, rec := range c.records {
		names[i] = rec.Name
	}
	return names
}

// Options returns the selector entries: SelectAll followed by every name.
func (c *Catalog) Options() []string {
	return append([]string{SelectAll}, c.Names()...)
}

// Lookup returns the record with the given name.
func (c *Catalog) Lookup(name string) (models.SourceRecord, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.SourceRecord{}, false
	}
	return c.records[i], true
}

// Resolve returns the selected records in catalog order. Unknown names are
// ignored.
func (c *Catalog) Resolve(sel Selection) []models.SourceRecord {
	if sel.all {
		return c.Records()
	}
	out := make([]models.SourceRecord, 0, len(sel.names))
	for _, rec := range c.records {
		if _, ok := sel.names[rec.Name]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Selection is a set of source names, or every source.
type Selection struct {
	all   bool
	names map[string]struct{}
}

// NewSelection builds a selection from selector values. Any SelectAll entry
// selects the whole catalog.
func NewSelection(names ...string) Selection {
	sel := Selection{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == SelectAll {
			return All()
		}
		sel.names[n] = struct{}{}
	}
	return sel
}

// All selects every source.
func All() Selection { return Selection{all: true} }

// IsAll reports whether the selection covers the whole catalog.
func (s Selection) IsAll() bool { return s.all }

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return !s.all && len(s.names) == 0 }

// field binds a catalog column to a record member.
type field struct {
	name string
	get  func(*models.SourceRecord) float64
	set  func(*models.SourceRecord, float64)
}

// NameField is the string column holding the source name.
const NameField = "Name"

// fields lists the numeric columns in catalog order.
var fields = []field{
	{"Frequency", func(r *models.SourceRecord) float64 { return r.Frequency }, func(r *models.SourceRecord, v float64) { r.Frequency = v }},
	{"FrequencyDerivative", func(r *models.SourceRecord) float64 { return r.FrequencyDerivative }, func(r *models.SourceRecord, v float64) { r.FrequencyDerivative = v }},
	{"Amplitude", func(r *models.SourceRecord) float64 { return r.Amplitude }, func(r *models.SourceRecord, v float64) { r.Amplitude = v }},
	{"EclipticLatitude", func(r *models.SourceRecord) float64 { return r.EclipticLatitude }, func(r *models.SourceRecord, v float64) { r.EclipticLatitude = v }},
	{"EclipticLongitude", func(r *models.SourceRecord) float64 { return r.EclipticLongitude }, func(r *models.SourceRecord, v float64) { r.EclipticLongitude = v }},
	{"Polarization", func(r *models.SourceRecord) float64 { return r.Polarization }, func(r *models.SourceRecord, v float64) { r.Polarization = v }},
	{"Inclination", func(r *models.SourceRecord) float64 { return r.Inclination }, func(r *models.SourceRecord, v float64) { r.Inclination = v }},
	{"InitialPhase", func(r *models.SourceRecord) float64 { return r.InitialPhase }, func(r *models.SourceRecord, v float64) { r.InitialPhase = v }},
}

// FieldNames returns the column names, Name first.
func FieldNames() []string {
	out := []string{NameField}
	for _, f := range fields {
		out = append(out, f.name)
	}
	return out
}

// Values returns the numeric columns of rec in FieldNames order, without Name.
func Values(rec models.SourceRecord) []float64 {
	out := make([]float64, len(fields))
	for i, f := range fields {
		out[i] = f.get(&rec)
	}
	return out
}
