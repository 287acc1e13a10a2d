package schema

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache stores parsed schemas by provider key.
type Cache interface {
	Get(key string) (*Schema, bool)
	Add(key string, s *Schema) bool
}

// NewLRUCache returns a size bounded cache whose entries expire after ttl.
// A zero ttl keeps entries until they are evicted by size.
func NewLRUCache(size int, ttl time.Duration) Cache {
	return expirable.NewLRU[string, *Schema](size, nil, ttl)
}

// Loader turns provider output into schemas, parsing each key at most
// once at a time and remembering the result in its cache.
type Loader struct {
	cache  Cache
	logger log.Logger
	group  singleflight.Group
}

// NewLoader creates a Loader. A nil cache disables caching and a nil
// logger discards output.
func NewLoader(cache Cache, logger log.Logger) *Loader {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Loader{cache: cache, logger: logger}
}

// Load returns the schema for p, consulting the cache first.
func (l *Loader) Load(ctx context.Context, p Provider) (*Schema, error) {
	key := p.SchemaKey()
	if l.cache != nil {
		if s, ok := l.cache.Get(key); ok {
			level.Debug(l.logger).Log("msg", "schema cache hit", "key", key)
			return s, nil
		}
	}
	v, err, shared := l.group.Do(key, func() (any, error) {
		level.Debug(l.logger).Log("msg", "loading schema", "key", key)
		start := time.Now()
		raw, err := p.LoadSchema(ctx)
		if err != nil {
			return nil, err
		}
		s, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			l.cache.Add(key, s)
		}
		level.Debug(l.logger).Log("msg", "schema loaded", "key", key, "types", len(s.Types), "duration", time.Since(start))
		return s, nil
	})
	if err != nil {
		level.Warn(l.logger).Log("msg", "schema load failed", "key", key, "err", err)
		return nil, err
	}
	if shared {
		level.Debug(l.logger).Log("msg", "schema load shared", "key", key)
	}
	return v.(*Schema), nil
}
