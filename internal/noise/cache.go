package noise

import (
	"sync"

	"github.com/RMahshie/wigwag/internal/grid"
	"github.com/RMahshie/wigwag/pkg/models"
)

type cacheKey struct {
	budget Budget
	years  float64
	grid   string
}

// Cache memoises noise curves per (budget, duration, grid). Curves depend on
// nothing else, so entries never go stale. Callers always receive copies.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]models.NoiseCurvePair
}

// NewCache creates an empty curve cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]models.NoiseCurvePair)}
}

// Curves returns the noise curves for cfg over g, computing them on first use.
func (c *Cache) Curves(cfg Configuration, g *grid.Frequency) (models.NoiseCurvePair, error) {
	if err := cfg.Validate(); err != nil {
		return models.NoiseCurvePair{}, err
	}
	key := cacheKey{budget: cfg.Budget, years: cfg.DurationYears, grid: g.Key()}

	c.mu.RLock()
	pair, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return pair.Clone(), nil
	}

	m, err := New(cfg.Budget)
	if err != nil {
		return models.NoiseCurvePair{}, err
	}
	pair = m.Curves(g, cfg.DurationYears)

	c.mu.Lock()
	c.entries[key] = pair
	c.mu.Unlock()

	return pair.Clone(), nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
