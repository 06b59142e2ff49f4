package pruning

import (
	"context"
	"io"
)

// MetadataReader is the out-of-scope collaborator that loads segment
// metadata on demand (spec 6). Implementations are expected to be
// concurrency-safe: the executor issues overlapping reads freely.
type MetadataReader interface {
	Read(ctx context.Context, path string, cacheKey *string, version uint64) (SegmentInfo, error)
}

// ObjectStore is the out-of-scope collaborator behind the bloom index
// reader: a ranged read against remote object storage (spec 6).
// Implementations are expected to be concurrency-safe.
type ObjectStore interface {
	ReadRange(ctx context.Context, location string, sizeBytes uint64) (io.ReadCloser, error)
}

// Settings are the recognized push-down-independent options (spec 6):
// a worker count and the concurrency budget for pruning I/O. The executor
// does not read MaxThreads; it creates no worker pool and runs its tasks
// as goroutines. A MaxConcurrentPrune below the mandatory floor is raised
// by the executor, which logs a warning when it does so.
type Settings struct {
	MaxThreads         int
	MaxConcurrentPrune int
}

// TableContext bundles the collaborators the executor needs beyond the
// push-down request itself (spec 6): the object store handle, the
// configured settings, and a correlation id for the caller's tracing,
// which this package never uses for tracing itself (out of scope) but
// threads through for log lines.
type TableContext struct {
	Storage       ObjectStore
	Settings      Settings
	CorrelationID string
}
