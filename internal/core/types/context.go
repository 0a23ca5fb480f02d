// Provides helper functions for working with contexts.
package types

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// DefaultSignalNotifySubContext returns a context cancelled when SIGINT or
// SIGTERM is received.
func DefaultSignalNotifySubContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
