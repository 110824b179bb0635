package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// userLocker serializes answer submissions per user so two concurrent
// submissions cannot interleave the answer upsert and the aggregate
// recalculation. Locks are created lazily and kept for the process lifetime;
// the per-user footprint is a single semaphore.
type userLocker struct {
	locks sync.Map // userID -> *semaphore.Weighted
}

func newUserLocker() *userLocker {
	return &userLocker{}
}

// Acquire blocks until the user's submission slot is free or ctx is done.
// The returned release function must be called exactly once.
func (l *userLocker) Acquire(ctx context.Context, userID string) (func(), error) {
	v, _ := l.locks.LoadOrStore(userID, semaphore.NewWeighted(1))
	sem := v.(*semaphore.Weighted)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
