package redis

import (
	"context"
	"errors"
	"time"

	"github.com/uit-hub/academic-ledger/internal/domain/ledger"
)

// LedgerCache caches persisted ledgers by student number.
type LedgerCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewLedgerCache creates a new LedgerCache. A zero ttl uses TTLLedgerCache.
func NewLedgerCache(cache *Cache, ttl time.Duration) *LedgerCache {
	if ttl <= 0 {
		ttl = TTLLedgerCache
	}
	return &LedgerCache{cache: cache, ttl: ttl}
}

// Get returns the cached ledger. A miss yields (nil, nil).
func (c *LedgerCache) Get(ctx context.Context, mssv string) (*ledger.Ledger, error) {
	var l ledger.Ledger
	if err := c.cache.Get(ctx, LedgerKey(mssv), &l); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Set caches the ledger.
func (c *LedgerCache) Set(ctx context.Context, l *ledger.Ledger) error {
	if l == nil {
		return nil
	}
	return c.cache.Set(ctx, LedgerKey(l.MSSV), l, c.ttl)
}

// Invalidate drops the cached ledger.
func (c *LedgerCache) Invalidate(ctx context.Context, mssv string) error {
	return c.cache.Delete(ctx, LedgerKey(mssv))
}
