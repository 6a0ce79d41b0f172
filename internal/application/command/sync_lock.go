package command

import (
	"context"
	"sync"

	"github.com/uit-hub/academic-ledger/internal/domain/shared"
)

// LocalSyncLocker is an in-process SyncLocker, used when Redis is disabled.
// It only serializes syncs inside one process.
type LocalSyncLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalSyncLocker creates a new LocalSyncLocker.
func NewLocalSyncLocker() *LocalSyncLocker {
	return &LocalSyncLocker{held: make(map[string]struct{})}
}

// Acquire marks mssv as syncing. It does not wait for a held lock.
func (l *LocalSyncLocker) Acquire(ctx context.Context, mssv string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[mssv]; ok {
		return nil, shared.ErrSyncInProgress
	}
	l.held[mssv] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, mssv)
			l.mu.Unlock()
		})
	}, nil
}
