// Package lock provides the mutual exclusion that keeps two rebuilds from
// running at the same time, in process or across replicas.
package lock

import (
	"context"
	"errors"
)

// ErrNotHeld is returned by Unlock when the caller does not hold the lock.
var ErrNotHeld = errors.New("lock not held")

// Locker is a non-blocking lock.
type Locker interface {
	// TryLock acquires the lock if it is free and reports whether it did.
	TryLock(ctx context.Context) (bool, error)

	// Unlock releases a lock acquired by TryLock.
	Unlock(ctx context.Context) error
}
