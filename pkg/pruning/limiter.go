package pruning

import "sync/atomic"

// Limiter is the row-limit gate (spec 4.4): a shared, lock-free, safe
// overshoot gate that stops granting credit once `limit` rows have been
// provably covered. All operations are safe for concurrent use by every
// task of one prune call.
type Limiter struct {
	unbounded bool
	remaining atomic.Uint64
}

// NewLimiter returns a Limiter bounded to limit rows, or an unbounded
// Limiter if limit is nil.
func NewLimiter(limit *uint64) *Limiter {
	l := &Limiter{unbounded: limit == nil}
	if limit != nil {
		l.remaining.Store(*limit)
	}
	return l
}

// Exceeded reports whether the limit has already been reached. Always
// false for an unbounded limiter.
func (l *Limiter) Exceeded() bool {
	if l.unbounded {
		return false
	}
	return l.remaining.Load() == 0
}

// WithinLimit atomically reserves up to rowCount rows of remaining credit
// and reports whether any credit was granted. It decrements remaining by
// min(remaining, rowCount): the last reservation clips to whatever is
// left rather than consuming the whole block's row count, per spec 4.4 and
// 4.9's resolved open question. An unbounded limiter always grants credit
// without touching any state.
func (l *Limiter) WithinLimit(rowCount uint64) bool {
	if l.unbounded {
		return true
	}
	for {
		remaining := l.remaining.Load()
		if remaining == 0 {
			return false
		}
		reserve := rowCount
		if reserve > remaining {
			reserve = remaining
		}
		if l.remaining.CompareAndSwap(remaining, remaining-reserve) {
			return true
		}
	}
}
