package pruning

// RangeFilterPruner decides keep/drop for a segment or block purely from
// its column statistics and row count, per spec 4.2. It never performs
// I/O.
type RangeFilterPruner interface {
	ShouldKeep(colStats map[ColumnID]ColumnStats, rowCount uint64) bool
}

// alwaysKeepRangePruner is the dummy pruner returned when the predicate
// set is empty: the neutral element for this stage.
type alwaysKeepRangePruner struct{}

func (alwaysKeepRangePruner) ShouldKeep(map[ColumnID]ColumnStats, uint64) bool { return true }

// compiledRangePruner evaluates a compiled predicate tree against
// statistics.
type compiledRangePruner struct {
	expr Expr
}

// NewRangeFilterPruner compiles expr into a RangeFilterPruner. A nil expr
// (no predicate pushed down) returns the always-keep dummy pruner.
func NewRangeFilterPruner(expr Expr) RangeFilterPruner {
	if expr == nil {
		return alwaysKeepRangePruner{}
	}
	return compiledRangePruner{expr: expr}
}

func (p compiledRangePruner) ShouldKeep(colStats map[ColumnID]ColumnStats, rowCount uint64) bool {
	return evalKeep(p.expr, colStats, rowCount)
}

// evalKeep implements the rules in spec 4.2: a predicate is evaluated
// against the closed interval [min,max] plus null_count vs row_count,
// never against the block's actual rows. Columns absent from stats keep
// conservatively; unsupported predicate shapes (Other) keep conservatively
// too, since "cannot disprove" defaults to true.
func evalKeep(e Expr, stats map[ColumnID]ColumnStats, rowCount uint64) bool {
	switch v := e.(type) {
	case Comparison:
		s, ok := stats[v.Column]
		if !ok {
			return true
		}
		switch v.Op {
		case OpEQ:
			return s.Min.Compare(v.Const) <= 0 && v.Const.Compare(s.Max) <= 0
		case OpLT:
			return s.Min.Compare(v.Const) < 0
		case OpGT:
			return s.Max.Compare(v.Const) > 0
		case OpNE:
			// unsatisfiable only when every row is provably equal to Const.
			return !(s.Min.Compare(v.Const) == 0 && s.Max.Compare(v.Const) == 0)
		case OpGE:
			return s.Max.Compare(v.Const) >= 0
		case OpLE:
			return s.Min.Compare(v.Const) <= 0
		default:
			return true
		}
	case Equality:
		s, ok := stats[v.Column]
		if !ok {
			return true
		}
		return s.Min.Compare(v.Const) <= 0 && v.Const.Compare(s.Max) <= 0
	case IsNull:
		s, ok := stats[v.Column]
		if !ok {
			return true
		}
		return s.NullCount > 0
	case IsNotNull:
		s, ok := stats[v.Column]
		if !ok {
			return true
		}
		return s.NullCount < rowCount
	case And:
		for _, operand := range v.Operands {
			if !evalKeep(operand, stats, rowCount) {
				return false
			}
		}
		return true
	case Or:
		if len(v.Operands) == 0 {
			return true
		}
		for _, operand := range v.Operands {
			if evalKeep(operand, stats, rowCount) {
				return true
			}
		}
		return false
	case Not:
		return evalKeep(negate(v.Operand), stats, rowCount)
	case Other:
		return true
	default:
		return true
	}
}

// negate pushes a Not down to its leaves via De Morgan's laws, so evalKeep
// never has to reason about negation directly: NOT(AND) becomes OR(NOT,
// ...), NOT(OR) becomes AND(NOT, ...), NOT(NOT(x)) cancels to x, and each
// comparison/nullness leaf rewrites to its logical complement.
func negate(e Expr) Expr {
	switch v := e.(type) {
	case Comparison:
		return Comparison{Column: v.Column, Op: complementOp(v.Op), Const: v.Const}
	case Equality:
		return Comparison{Column: v.Column, Op: OpNE, Const: v.Const}
	case IsNull:
		return IsNotNull{Column: v.Column}
	case IsNotNull:
		return IsNull{Column: v.Column}
	case And:
		negated := make([]Expr, len(v.Operands))
		for i, o := range v.Operands {
			negated[i] = negate(o)
		}
		return Or{Operands: negated}
	case Or:
		negated := make([]Expr, len(v.Operands))
		for i, o := range v.Operands {
			negated[i] = negate(o)
		}
		return And{Operands: negated}
	case Not:
		return v.Operand
	default:
		// Other (or anything else opaque): neither it nor its negation can
		// be disproven from statistics, so it stays conservative either way.
		return e
	}
}

// complementOp returns the logical complement of op: NOT(col OP v) is
// equivalent to `col complementOp(OP) v`.
func complementOp(op CompareOp) CompareOp {
	switch op {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpGE:
		return OpLT
	case OpGT:
		return OpLE
	case OpLE:
		return OpGT
	default:
		return op
	}
}
