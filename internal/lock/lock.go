// Package lock serializes work per key, in process or across instances.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when a lock could not be taken before the deadline
var ErrNotAcquired = errors.New("lock not acquired")

// Locker takes an exclusive lock on key. The returned function releases it and
// is safe to call once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
