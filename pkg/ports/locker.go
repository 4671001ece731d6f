package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets several agent replicas share sessions and a workbook.
type DistributedLocker interface {
	// Lock acquires a lock for the given key (a session ID, or GridLockKey).
	// It blocks until the lock is acquired or the context is canceled.
	// The lock stays held until unlocked; ttl only limits how long it
	// survives a holder that died without unlocking.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// GridLockKey is the lock key guarding the shared grid.
const GridLockKey = "grid"
