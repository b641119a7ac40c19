// Package climcache persists smoothed seasonal curves on disk so that
// repeated detection runs over the same baseline skip the pooled-percentile
// pass, which dominates per-pixel cost. Entries are msgpack-encoded and
// keyed by pixel identity plus the climatology parameters that shaped the
// curve; changing any parameter produces a different key.
package climcache

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/seastate/heatwave/internal/climatology"
	"github.com/seastate/heatwave/internal/timeseries"
)

// Cache is a directory-backed store of seasonal curves.
type Cache struct {
	dir    string
	logger *zap.SugaredLogger
}

// New opens (creating if needed) a curve cache rooted at dir.
func New(dir string, logger *zap.SugaredLogger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: dir, logger: logger}, nil
}

// entry is the on-disk representation of a Curve. Slices rather than fixed
// arrays keep the encoding compact and easy to validate on read.
type entry struct {
	Mean      []float64 `msgpack:"mean"`
	Threshold []float64 `msgpack:"threshold"`
	Missing   []bool    `msgpack:"missing"`
}

// Key derives the cache key for one pixel and one parameter set.
func Key(pixelID string, cfg climatology.Config) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d|%g|%d",
		pixelID,
		cfg.BaselineStart.Format("2006-01-02"),
		cfg.BaselineEnd.Format("2006-01-02"),
		cfg.WindowWidth, cfg.Percentile, cfg.SmoothingWidth)
	return fmt.Sprintf("%016x", h.Sum64())
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".clim")
}

// Get loads a cached curve. ok is false on a miss; a corrupt entry is
// treated as a miss and removed.
func (c *Cache) Get(key string) (*climatology.Curve, bool) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		c.logger.Warnf("discarding corrupt climatology cache entry %s: %v", key, err)
		os.Remove(c.path(key))
		return nil, false
	}
	if len(e.Mean) != timeseries.DOYMax || len(e.Threshold) != timeseries.DOYMax || len(e.Missing) != timeseries.DOYMax {
		c.logger.Warnf("discarding climatology cache entry %s: curve length %d/%d/%d, want %d",
			key, len(e.Mean), len(e.Threshold), len(e.Missing), timeseries.DOYMax)
		os.Remove(c.path(key))
		return nil, false
	}

	var curve climatology.Curve
	copy(curve.Mean[1:], e.Mean)
	copy(curve.Threshold[1:], e.Threshold)
	copy(curve.Missing[1:], e.Missing)
	return &curve, true
}

// Put stores a curve under the given key, replacing any previous entry.
func (c *Cache) Put(key string, curve *climatology.Curve) error {
	e := entry{
		Mean:      curve.Mean[1:],
		Threshold: curve.Threshold[1:],
		Missing:   curve.Missing[1:],
	}
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encoding climatology cache entry: %w", err)
	}

	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing climatology cache entry: %w", err)
	}
	return os.Rename(tmp, c.path(key))
}
