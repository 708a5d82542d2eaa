package roadmap

import (
	"context"
	"time"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

// detachedTaskTimeout caps how long a background enhancement task may run
// after its originating request has already returned.
const detachedTaskTimeout = 5 * time.Minute

// Detach runs fn on its own goroutine with a fresh context, so the caller's
// request lifecycle cannot cancel it. Panics are recovered and logged; a
// detached task can never take down the process or fail its caller.
func Detach(log *logger.Logger, name string, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Detached task panicked", "task", name, "panic", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), detachedTaskTimeout)
		defer cancel()
		fn(ctx)
	}()
}
