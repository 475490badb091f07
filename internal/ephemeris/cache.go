package ephemeris

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"chosenoffset.com/sunmap/internal/core/shadows"
	"chosenoffset.com/sunmap/internal/log"
)

const (
	positionCacheCounters = 1 << 17
	positionCacheMaxCost  = 1 << 16 // One unit per cached position
)

// CachedProvider memoizes another provider's positions. Runs that sweep the
// same time series several times (one per evaluation height) compute each
// position once.
type CachedProvider struct {
	next  Provider
	cache *ristretto.Cache[string, shadows.SunPosition]
}

// NewCachedProvider wraps next with a bounded in-memory cache
func NewCachedProvider(next Provider) (*CachedProvider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, shadows.SunPosition]{
		NumCounters: positionCacheCounters,
		MaxCost:     positionCacheMaxCost,
		BufferItems: 64,
		// Cost is counted in positions only
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create position cache: %w", err)
	}
	return &CachedProvider{next: next, cache: cache}, nil
}

func positionKey(t time.Time, latitude, longitude float64) string {
	return fmt.Sprintf("%d|%.6f|%.6f", t.UnixNano(), latitude, longitude)
}

// Position implements Provider. Errors are never cached.
func (c *CachedProvider) Position(t time.Time, latitude, longitude float64) (shadows.SunPosition, error) {
	key := positionKey(t, latitude, longitude)
	if pos, ok := c.cache.Get(key); ok {
		return pos, nil
	}

	pos, err := c.next.Position(t, latitude, longitude)
	if err != nil {
		return shadows.SunPosition{}, err
	}
	if !c.cache.Set(key, pos, 1) {
		log.Warnf("position cache dropped entry for %s", t.UTC().Format(time.RFC3339))
		return pos, nil
	}
	c.cache.Wait()
	return pos, nil
}

// Wait blocks until pending cache writes are visible
func (c *CachedProvider) Wait() {
	c.cache.Wait()
}

// Close releases the cache
func (c *CachedProvider) Close() {
	c.cache.Close()
}
