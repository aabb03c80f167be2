package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/casework/internal/cache"
	"github.com/ppiankov/casework/internal/extract"
	"github.com/ppiankov/casework/internal/logging"
)

// CachedDirectory remembers search results so repeated endings do not
// walk the phonebook again. Profile reads are never cached.
type CachedDirectory struct {
	next   Directory
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedDirectory wraps next. A zero ttl leaves expiry to the cache.
func NewCachedDirectory(next Directory, c cache.Cache, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{
		next:   next,
		cache:  c,
		ttl:    ttl,
		logger: logging.OrDefault(logger, "phonebook-cache"),
	}
}

// PhonebookCacheKey is the cache key of one search term
func PhonebookCacheKey(term string) string {
	return cache.Key("phonebook", term)
}

// Search serves repeat terms from the cache
func (d *CachedDirectory) Search(ctx context.Context, term string) (extract.DirectoryResults, error) {
	key := PhonebookCacheKey(term)

	var hit extract.DirectoryResults
	if cache.GetJSON(d.cache, key, &hit) {
		d.logger.Debug("cache hit", "term", term)
		return hit, nil
	}

	res, err := d.next.Search(ctx, term)
	if err != nil {
		return res, err
	}
	if err := cache.SetJSON(d.cache, key, res, d.ttl); err != nil {
		d.logger.Warn("cache write failed", "term", term, "error", err)
	}
	return res, nil
}

// LastOnline is never cached
func (d *CachedDirectory) LastOnline(ctx context.Context, name string) (string, bool) {
	return d.next.LastOnline(ctx, name)
}
