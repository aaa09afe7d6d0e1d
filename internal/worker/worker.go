package worker

import (
	"context"
)

// Worker is the common interface of all background workers.
type Worker interface {
	// Start runs the worker loop until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop signals the worker to shut down.
	Stop() error

	// Name returns the worker name.
	Name() string
}
