package pruning

import (
	"context"
	"io"
	"math"

	"github.com/tablestore/blockprune/pkg/bloom"
)

// BloomPruner decides keep/drop for a block from its persisted bloom
// index, per spec 4.3. Unlike RangeFilterPruner, ShouldKeep performs I/O
// and must be awaited.
type BloomPruner interface {
	ShouldKeep(ctx context.Context, indexLocation *string, indexSize uint64) (bool, error)
}

// alwaysKeepBloomPruner is the dummy pruner returned when no equality
// predicate references an indexed column: the index is never fetched.
type alwaysKeepBloomPruner struct{}

func (alwaysKeepBloomPruner) ShouldKeep(context.Context, *string, uint64) (bool, error) {
	return true, nil
}

// compiledBloomPruner tests a fixed set of equality constants against
// whatever filter is found at the block's index location.
type compiledBloomPruner struct {
	store  ObjectStore
	values [][]byte
}

// NewBloomPruner builds a BloomPruner for the conjunctive equality
// predicates in expr (see CollectEqualities) that reference a column
// present in indexedColumns. If none do, it returns the always-keep
// dummy pruner and the index is never read.
func NewBloomPruner(store ObjectStore, expr Expr, indexedColumns map[ColumnID]bool) BloomPruner {
	if expr == nil {
		return alwaysKeepBloomPruner{}
	}
	var values [][]byte
	for _, eq := range CollectEqualities(expr) {
		if !indexedColumns[eq.Column] {
			continue
		}
		values = append(values, scalarKey(eq.Const))
	}
	if len(values) == 0 {
		return alwaysKeepBloomPruner{}
	}
	return compiledBloomPruner{store: store, values: values}
}

// ShouldKeep fetches the serialized bloom index at indexLocation (sized
// indexSize) and tests every tracked equality value against it. A nil
// indexLocation means the block carries no index, which keeps
// unconditionally. Any indexed equality predicate reporting definite
// absence drops the block; a read or decode failure is not suppressed and
// is returned to the caller, per spec 4.3 and 7.
func (p compiledBloomPruner) ShouldKeep(ctx context.Context, indexLocation *string, indexSize uint64) (bool, error) {
	if indexLocation == nil {
		return true, nil
	}

	rc, err := p.store.ReadRange(ctx, *indexLocation, indexSize)
	if err != nil {
		return false, ErrStorageOther.Wrap(err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return false, ErrStorageOther.Wrap(err)
	}

	filter, err := bloom.Decode(data)
	if err != nil {
		return false, ErrStorageOther.Wrap(err)
	}

	for _, v := range p.values {
		if !filter.MayContain(v) {
			return false, nil
		}
	}
	return true, nil
}

// scalarKey renders a Scalar into the byte key a bloom filter was built
// over. Keys must match exactly how the write-time bloom builder encoded
// the same logical value. pkg/bloom hashes whatever bytes it is given; the
// encoding is defined here: a one-byte kind tag ('i', 'f', 's', 'b')
// followed by the little-endian value, the string bytes, or a 0/1 byte.
func scalarKey(s Scalar) []byte {
	switch s.Kind {
	case ScalarInt64:
		return []byte{'i', byte(s.I64), byte(s.I64 >> 8), byte(s.I64 >> 16), byte(s.I64 >> 24),
			byte(s.I64 >> 32), byte(s.I64 >> 40), byte(s.I64 >> 48), byte(s.I64 >> 56)}
	case ScalarFloat64:
		bits := math.Float64bits(s.F64)
		return []byte{'f', byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
			byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56)}
	case ScalarString:
		return append([]byte{'s'}, []byte(s.Str)...)
	case ScalarBool:
		if s.Bool {
			return []byte{'b', 1}
		}
		return []byte{'b', 0}
	default:
		return nil
	}
}
