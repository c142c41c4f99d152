// Package datafiles maps (section, noise budget, duration) to the path of a
// precomputed data file, and carries the dashboard navigation sections.
package datafiles

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RMahshie/wigwag/internal/noise"
	"github.com/RMahshie/wigwag/pkg/models"
)

// WaterfallSection is the section holding the SNR waterfall meshes.
const WaterfallSection = "SO2.waterfall"

// ErrConfigurationNotFound is returned when no data file matches a key.
var ErrConfigurationNotFound = errors.New("configuration not found")

// Key identifies a data file within a section.
type Key struct {
	Budget   noise.Budget
	Duration float64
}

// NewKey builds a key from its string parts, e.g. ("redbook", "4.5").
func NewKey(budget, duration string) (Key, error) {
	b, err := noise.ParseBudget(budget)
	if err != nil {
		return Key{}, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(duration), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return Key{}, fmt.Errorf("%w: duration %q", noise.ErrInvalidConfiguration, duration)
	}
	return Key{Budget: b, Duration: d}, nil
}

// ParseKey parses the tuple form "(redbook, 4.5)".
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return Key{}, fmt.Errorf("%w: malformed key %q", noise.ErrInvalidConfiguration, s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("%w: malformed key %q", noise.ErrInvalidConfiguration, s)
	}
	return NewKey(strings.Trim(strings.TrimSpace(parts[0]), `'"`), strings.Trim(strings.TrimSpace(parts[1]), `'"`))
}

// KeyOf returns the key of a noise configuration.
func KeyOf(cfg noise.Configuration) Key {
	return Key{Budget: cfg.Budget, Duration: cfg.DurationYears}
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %g)", k.Budget, k.Duration)
}

func (k Key) matches(o Key) bool {
	return k.Budget == o.Budget && math.Abs(k.Duration-o.Duration) < 1e-9
}

type entry struct {
	key  Key
	path string
}

// Table is the parsed data-file configuration. It is read-only after Parse.
type Table struct {
	sections []models.Section
	files    map[string][]entry
}

type fileEntry struct {
	NoiseBudget string  `yaml:"noise_budget"`
	Duration    float64 `yaml:"duration"`
	Path        string  `yaml:"path"`
}

type document struct {
	Sections  []models.Section       `yaml:"sections"`
	DataFiles map[string][]fileEntry `yaml:"datafiles"`
}

// Load reads the table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("data configuration %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("read data configuration: %w", err)
	}
	return Parse(data)
}

// Read decodes the table from r.
func Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data configuration: %w", err)
	}
	return Parse(data)
}

// Parse decodes the YAML table.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse data configuration: %w", err)
	}

	t := &Table{sections: doc.Sections, files: make(map[string][]entry, len(doc.DataFiles))}
	for section, files := range doc.DataFiles {
		for i, f := range files {
			b, err := noise.ParseBudget(f.NoiseBudget)
			if err != nil {
				return nil, fmt.Errorf("parse data configuration: %s[%d]: %w", section, i, err)
			}
			if strings.TrimSpace(f.Path) == "" {
				return nil, fmt.Errorf("parse data configuration: %s[%d]: empty path", section, i)
			}
			key := Key{Budget: b, Duration: f.Duration}
			for _, e := range t.files[section] {
				if e.key.matches(key) {
					return nil, fmt.Errorf("parse data configuration: %s: duplicate key %s", section, key)
				}
			}
			t.files[section] = append(t.files[section], entry{key: key, path: f.Path})
		}
	}
	return t, nil
}

// Lookup returns the data file path for key in section.
func (t *Table) Lookup(section string, key Key) (string, error) {
	for _, e := range t.files[section] {
		if e.key.matches(key) {
			return e.path, nil
		}
	}
	return "", fmt.Errorf("%w: %s %s", ErrConfigurationNotFound, section, key)
}

// Keys returns the keys configured for section, in file order.
func (t *Table) Keys(section string) []Key {
	entries := t.files[section]
	out := make([]Key, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}

// Paths returns every configured data file path, sorted.
func (t *Table) Paths() []string {
	var out []string
	for _, entries := range t.files {
		for _, e := range entries {
			out = append(out, e.path)
		}
	}
	sort.Strings(out)
	return out
}

// Sections returns the navigation sections in file order.
func (t *Table) Sections() []models.Section {
	out := make([]models.Section, len(t.sections))
	for i, s := range t.sections {
		out[i] = s
		out[i].Pages = append([]models.SectionPage(nil), s.Pages...)
	}
	return out
}
