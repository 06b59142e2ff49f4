package pruning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablestore/blockprune/pkg/pruning"
)

func statsOf(min, max pruning.Scalar, nullCount, _ uint64) map[pruning.ColumnID]pruning.ColumnStats {
	return map[pruning.ColumnID]pruning.ColumnStats{
		1: {Min: min, Max: max, NullCount: nullCount},
	}
}

func TestRangeFilterNilExprAlwaysKeeps(t *testing.T) {
	p := pruning.NewRangeFilterPruner(nil)
	assert.True(t, p.ShouldKeep(nil, 0))
}

func TestRangeFilterComparisonDisjointRangeDrops(t *testing.T) {
	// a > 100, block range [0, 50]: provably no row can satisfy.
	expr := pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(100)}
	p := pruning.NewRangeFilterPruner(expr)

	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(50), 0, 10)
	assert.False(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterComparisonOverlappingRangeKeeps(t *testing.T) {
	expr := pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(100)}
	p := pruning.NewRangeFilterPruner(expr)

	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(200), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterEqualityOutsideRangeDrops(t *testing.T) {
	expr := pruning.Equality{Column: 1, Const: pruning.Int64Scalar(5)}
	p := pruning.NewRangeFilterPruner(expr)

	stats := statsOf(pruning.Int64Scalar(10), pruning.Int64Scalar(20), 0, 10)
	assert.False(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterEqualityInsideRangeKeeps(t *testing.T) {
	expr := pruning.Equality{Column: 1, Const: pruning.Int64Scalar(15)}
	p := pruning.NewRangeFilterPruner(expr)

	stats := statsOf(pruning.Int64Scalar(10), pruning.Int64Scalar(20), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterIsNullRequiresNulls(t *testing.T) {
	expr := pruning.IsNull{Column: 1}
	p := pruning.NewRangeFilterPruner(expr)

	withNulls := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(0), 3, 10)
	assert.True(t, p.ShouldKeep(withNulls, 10))

	withoutNulls := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(0), 0, 10)
	assert.False(t, p.ShouldKeep(withoutNulls, 10))
}

func TestRangeFilterIsNotNullRequiresNonNulls(t *testing.T) {
	expr := pruning.IsNotNull{Column: 1}
	p := pruning.NewRangeFilterPruner(expr)

	allNull := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(0), 10, 10)
	assert.False(t, p.ShouldKeep(allNull, 10))

	someNonNull := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(0), 3, 10)
	assert.True(t, p.ShouldKeep(someNonNull, 10))
}

func TestRangeFilterAndShortCircuitsOnFirstDrop(t *testing.T) {
	expr := pruning.And{Operands: []pruning.Expr{
		pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(1000)},
		pruning.Comparison{Column: 1, Op: pruning.OpLT, Const: pruning.Int64Scalar(-1000)},
	}}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(10), 0, 10)
	assert.False(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterOrKeepsIfAnyOperandCouldMatch(t *testing.T) {
	expr := pruning.Or{Operands: []pruning.Expr{
		pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(1000)},
		pruning.Comparison{Column: 1, Op: pruning.OpLT, Const: pruning.Int64Scalar(5)},
	}}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(10), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterOrDropsOnlyIfEveryOperandIsDisproven(t *testing.T) {
	expr := pruning.Or{Operands: []pruning.Expr{
		pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(1000)},
		pruning.Comparison{Column: 1, Op: pruning.OpLT, Const: pruning.Int64Scalar(-1000)},
	}}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(10), 0, 10)
	assert.False(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterNotPushesThroughComparison(t *testing.T) {
	// NOT(a > 100) == a <= 100: block range [0,50] satisfies that for every row.
	expr := pruning.Not{Operand: pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(100)}}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(50), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterNotPushesThroughAndViaDeMorgan(t *testing.T) {
	// NOT(a > 1000 AND a < -1000) == a <= 1000 OR a >= -1000, always true
	// for any finite range, so it must never drop.
	expr := pruning.Not{Operand: pruning.And{Operands: []pruning.Expr{
		pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(1000)},
		pruning.Comparison{Column: 1, Op: pruning.OpLT, Const: pruning.Int64Scalar(-1000)},
	}}}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(10), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}

func TestRangeFilterDoubleNotCancels(t *testing.T) {
	inner := pruning.Comparison{Column: 1, Op: pruning.OpGT, Const: pruning.Int64Scalar(100)}
	expr := pruning.Not{Operand: pruning.Not{Operand: inner}}
	p := pruning.NewRangeFilterPruner(expr)

	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(50), 0, 10)
	assert.Equal(t, pruning.NewRangeFilterPruner(inner).ShouldKeep(stats, 10), p.ShouldKeep(stats, 10))
}

func TestRangeFilterNotOfOpaqueExprStaysConservative(t *testing.T) {
	expr := pruning.Not{Operand: pruning.Other{Description: "udf(a)"}}
	p := pruning.NewRangeFilterPruner(expr)
	assert.True(t, p.ShouldKeep(nil, 10))
}

func TestRangeFilterMissingColumnStatsKeeps(t *testing.T) {
	expr := pruning.Comparison{Column: 99, Op: pruning.OpGT, Const: pruning.Int64Scalar(100)}
	p := pruning.NewRangeFilterPruner(expr)
	stats := statsOf(pruning.Int64Scalar(0), pruning.Int64Scalar(10), 0, 10)
	assert.True(t, p.ShouldKeep(stats, 10))
}
