package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
	"github.com/uit-hub/academic-ledger/pkg/logger"
)

// SyncLock serializes syncs of one student across processes.
// The key holds a random token so a sync never releases a lock that expired
// and was taken by someone else.
type SyncLock struct {
	cache  *Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewSyncLock creates a new SyncLock. A zero ttl uses TTLSyncLock.
func NewSyncLock(cache *Cache, ttl time.Duration, log *logger.Logger) *SyncLock {
	if ttl <= 0 {
		ttl = TTLSyncLock
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SyncLock{cache: cache, ttl: ttl, logger: log}
}

// Acquire takes the lock for mssv. It returns shared.ErrSyncInProgress when
// another sync holds it. The returned release func is safe to call once.
func (l *SyncLock) Acquire(ctx context.Context, mssv string) (func(), error) {
	key := LockKey(mssv)
	token := uuid.NewString()

	ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, shared.ErrSyncInProgress
	}

	release := func() {
		// The caller's context may already be canceled.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		released, err := l.cache.DeleteIfEquals(ctx, key, token)
		switch {
		case err != nil:
			l.logger.Warn("release sync lock failed", logger.MSSV(mssv), logger.Err(err))
		case !released:
			l.logger.Warn("sync lock expired before release", logger.MSSV(mssv))
		}
	}
	return release, nil
}
