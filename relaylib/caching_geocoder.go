package relaylib

import (
	"context"
	"net"

	lru "github.com/hashicorp/golang-lru"
	"github.com/juju/errors"
)

// DefaultCacheSize is a default number of ip addresses which caching
// geocoder remembers.
const DefaultCacheSize = 8192

type cacheEntry struct {
	point GeoPoint
	err   error
}

type cachingGeocoder struct {
	Geocoder

	cache *lru.Cache
}

func (c cachingGeocoder) Lookup(ctx context.Context, ip net.IP) (GeoPoint, error) {
	cacheKey := ip.String()

	if value, ok := c.cache.Get(cacheKey); ok {
		entry := value.(cacheEntry)

		return entry.point, entry.err
	}

	point, err := c.Geocoder.Lookup(ctx, ip)
	if err == nil || errors.Cause(err) == ErrLocationUnknown {
		c.cache.Add(cacheKey, cacheEntry{point: point, err: err})
	}

	return point, err
}

// NewCachingGeocoder wraps geocoder with LRU cache of lookup results.
// Misses are cached as well, other errors are not.
func NewCachingGeocoder(geocoder Geocoder, itemsCount int) Geocoder {
	if itemsCount <= 0 {
		itemsCount = DefaultCacheSize
	}

	cache, err := lru.New(itemsCount)
	if err != nil {
		panic(err)
	}

	return cachingGeocoder{
		Geocoder: geocoder,
		cache:    cache,
	}
}
