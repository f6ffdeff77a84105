package email

import (
	"context"
	"time"
)

// DefaultSendTimeout bounds a single provider call.
const DefaultSendTimeout = 15 * time.Second

// NewSendContext returns a context for one delivery. Cancellation of the
// parent is detached so a dropped client connection does not abort a send
// that is already in flight; the timeout still applies.
func NewSendContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
