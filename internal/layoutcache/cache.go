// Package layoutcache memoizes computed layouts per (center, filter,
// viewport, graph digest). Results live in a bounded in-memory LRU and,
// optionally, a persistent store consulted on memory misses.
package layoutcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matsen/coviz/internal/layout"
	"github.com/matsen/coviz/internal/metrics"
)

// DefaultSize is the number of layouts kept in memory.
const DefaultSize = 64

// Key identifies a layout.
type Key struct {
	CenterID string
	Filter   string // canonical filter string, see coauthor.Filter.Key
	Width    float64
	Height   float64

	// Graph is the GraphDigest of the laid-out input.
	Graph string
}

// String returns the hex sha256 of the key's parts.
func (k Key) String() string {
	h := sha256.New()
	for _, part := range []string{
		k.CenterID,
		k.Filter,
		strconv.FormatFloat(k.Width, 'g', -1, 64),
		strconv.FormatFloat(k.Height, 'g', -1, 64),
		k.Graph,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GraphDigest returns the hex sha256 of in's nodes and edges. Node and edge
// order and edge direction do not matter; paper counts, the center and edge
// weights do. The viewport is not included.
func GraphDigest(in layout.Input) string {
	nodes := make([]string, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		nodes = append(nodes, n.ID+"\x00"+strconv.Itoa(n.PaperCount)+"\x00"+strconv.FormatBool(n.IsCenter))
	}
	slices.Sort(nodes)

	edges := make([]string, 0, len(in.Edges))
	for _, e := range in.Edges {
		a, b := e.Source, e.Target
		if b < a {
			a, b = b, a
		}
		edges = append(edges, a+"\x00"+b+"\x00"+strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}
	slices.Sort(edges)

	h := sha256.New()
	h.Write([]byte(in.CenterID))
	h.Write([]byte{1})
	for _, n := range nodes {
		h.Write([]byte(n))
		h.Write([]byte{1})
	}
	h.Write([]byte{2})
	for _, e := range edges {
		h.Write([]byte(e))
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a persistent tier behind the memory cache.
type Store interface {
	GetLayout(ctx context.Context, key string) (layout.Positions, bool, error)
	PutLayout(ctx context.Context, key string, pos layout.Positions) error
}

// Cache is safe for concurrent use.
type Cache struct {
	mem     *lru.Cache[string, layout.Positions]
	group   singleflight.Group
	store   Store
	metrics *metrics.Metrics
	logger  *log.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore adds a persistent tier.
func WithStore(s Store) Option {
	return func(c *Cache) {
		c.store = s
	}
}

// WithMetrics records hits and misses on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// New creates a cache holding up to size layouts in memory.
func New(size int, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	mem, err := lru.New[string, layout.Positions](size)
	if err != nil {
		return nil, fmt.Errorf("creating layout cache: %w", err)
	}
	c := &Cache{mem: mem}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// Get returns a copy of the cached layout for k.
func (c *Cache) Get(ctx context.Context, k Key) (layout.Positions, bool) {
	key := k.String()
	if pos, ok := c.mem.Get(key); ok {
		c.metrics.CacheLookup("memory", true)
		return maps.Clone(pos), true
	}
	c.metrics.CacheLookup("memory", false)

	if c.store == nil {
		return nil, false
	}
	pos, ok, err := c.store.GetLayout(ctx, key)
	if err != nil {
		c.logger.Warn("reading stored layout", "key", key, "err", err)
		return nil, false
	}
	c.metrics.CacheLookup("store", ok)
	if !ok {
		return nil, false
	}
	c.mem.Add(key, pos)
	return maps.Clone(pos), true
}

// Put stores pos under k in memory and, if configured, in the store.
func (c *Cache) Put(ctx context.Context, k Key, pos layout.Positions) error {
	key := k.String()
	c.mem.Add(key, maps.Clone(pos))
	if c.store == nil {
		return nil
	}
	if err := c.store.PutLayout(ctx, key, pos); err != nil {
		return fmt.Errorf("persisting layout: %w", err)
	}
	return nil
}

// GetOrCompute returns the cached layout for k, or calls compute once for
// all concurrent callers asking for the same key and caches its result.
// Failed computations are not cached. The bool reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, k Key, compute func(context.Context) (layout.Positions, error)) (layout.Positions, bool, error) {
	if pos, ok := c.Get(ctx, k); ok {
		return pos, true, nil
	}

	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		pos, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Put(ctx, k, pos); err != nil {
			c.logger.Warn("caching layout", "err", err)
		}
		return pos, nil
	})
	if err != nil {
		return nil, false, err
	}
	return maps.Clone(v.(layout.Positions)), false, nil
}

// Len returns the number of layouts held in memory.
func (c *Cache) Len() int {
	return c.mem.Len()
}

// Purge empties the memory tier.
func (c *Cache) Purge() {
	c.mem.Purge()
}
