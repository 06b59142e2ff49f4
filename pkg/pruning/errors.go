package pruning

import "github.com/zeebo/errs"

var (
	// ErrStorageOther marks metadata-read, bloom-index-read, or child-task
	// failures surfaced from a prune call.
	ErrStorageOther = errs.Class("pruning: storage")
	// ErrUnexpected marks failures that should not occur in-process, such
	// as a closed semaphore.
	ErrUnexpected = errs.Class("pruning: unexpected")
)
