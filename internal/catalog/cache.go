package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// DefaultKey is the store key the catalog is cached under
const DefaultKey = "languages"

// ErrCatalogFetch is returned when the catalog could not be fetched; the
// caller gets an empty catalog alongside it and should carry on
var ErrCatalogFetch = errors.New("failed to fetch language catalog")

// Source tells where a catalog came from
type Source int

const (
	SourceNone Source = iota
	SourceCache
	SourceNetwork
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceNetwork:
		return "network"
	default:
		return "none"
	}
}

// Cache serves the catalog from the store and falls back to the fetcher
type Cache struct {
	store   Store
	fetcher Fetcher
	key     string
	log     zerolog.Logger
}

// NewCache creates a catalog cache
func NewCache(store Store, fetcher Fetcher, log zerolog.Logger) *Cache {
	return &Cache{
		store:   store,
		fetcher: fetcher,
		key:     DefaultKey,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

// Get returns the cached catalog when a well-formed copy exists, otherwise
// fetches it and stores the result. On fetch failure it returns an empty
// catalog and an error wrapping ErrCatalogFetch.
func (c *Cache) Get(ctx context.Context) (Catalog, Source, error) {
	if cached, ok := c.load(ctx); ok {
		return cached, SourceCache, nil
	}

	fetched, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("language fetch failed, continuing without languages")
		return Catalog{}, SourceNone, fmt.Errorf("%w: %v", ErrCatalogFetch, err)
	}

	// An empty catalog is never stored; the next Get tries the network again
	if len(fetched) == 0 {
		c.log.Warn().Msg("language endpoint returned no languages")
		return Catalog{}, SourceNetwork, nil
	}

	data, err := fetched.Encode()
	if err == nil {
		err = c.store.Save(ctx, c.key, data)
	}
	if err != nil {
		// The fetched catalog is still good for this session
		c.log.Warn().Err(err).Msg("failed to cache languages")
	} else {
		c.log.Debug().Int("languages", len(fetched)).Msg("languages cached")
	}

	return fetched, SourceNetwork, nil
}

// load reads the cached catalog. Missing, unreadable or malformed data all
// count as a miss.
func (c *Cache) load(ctx context.Context) (Catalog, bool) {
	data, found, err := c.store.Load(ctx, c.key)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read cached languages")
		return nil, false
	}
	if !found {
		return nil, false
	}

	cached, err := Parse(data)
	if err != nil {
		c.log.Debug().Err(err).Msg("ignoring malformed cached languages")
		return nil, false
	}
	if len(cached) == 0 {
		return nil, false
	}

	return cached, true
}

// Clear drops the cached catalog so the next Get fetches it again
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, c.key)
}
