package pruning

// CompareOp is a monotone comparison operator consumable by the range
// filter (spec 4.2).
type CompareOp uint8

// Supported comparison operators. OpEQ/OpLT/OpGT are the monotone
// operators spec 4.2 names directly; OpNE/OpGE/OpLE are their De Morgan
// complements, produced internally when the range filter pushes a Not
// down to a comparison leaf.
const (
	OpEQ CompareOp = iota
	OpLT
	OpGT
	OpNE
	OpGE
	OpLE
)

// Expr is a scalar filter expression. The engine classifies each leaf
// into: a monotone/comparison (Comparison), an equality on an indexed
// column (Equality, consumed by the bloom pruner when the column carries
// a bloom index), a nullness check (IsNull/IsNotNull), or a boolean
// combinator (And, Or, Not). Any other expression is "other": it is not
// consumed and does not contribute to pruning.
type Expr interface {
	isExpr()
}

// Comparison is `Column OP Const`.
type Comparison struct {
	Column ColumnID
	Op     CompareOp
	Const  Scalar
}

// Equality is `Column = Const`. It is the same shape as a Comparison with
// Op == OpEQ, kept as a distinct type so the bloom pruner can select
// exactly the expressions it is entitled to consume without re-deriving
// that an OpEQ comparison is also an equality.
type Equality struct {
	Column ColumnID
	Const  Scalar
}

// IsNull is `Column IS NULL`.
type IsNull struct{ Column ColumnID }

// IsNotNull is `Column IS NOT NULL`.
type IsNotNull struct{ Column ColumnID }

// And is the conjunction of its operands.
type And struct{ Operands []Expr }

// Or is the disjunction of its operands.
type Or struct{ Operands []Expr }

// Not negates its operand.
type Not struct{ Operand Expr }

// Other is any expression the engine does not classify into one of the
// above: it is opaque to pruning and never contributes to a keep/drop
// decision.
type Other struct{ Description string }

func (Comparison) isExpr() {}
func (Equality) isExpr()   {}
func (IsNull) isExpr()     {}
func (IsNotNull) isExpr()  {}
func (And) isExpr()        {}
func (Or) isExpr()         {}
func (Not) isExpr()        {}
func (Other) isExpr()      {}

// CollectEqualities walks expr and returns every Equality leaf reachable
// through top-level And conjuncts: the set the bloom pruner may treat as
// necessary conditions and test independently (spec 4.3's ShouldKeep
// drops the block if any one of them reports definite-absent). It does
// NOT descend into Or or Not: an equality under a disjunction or a
// negation is not a necessary condition for the row to match — e.g. for
// `a=5 OR b=7`, a block missing `5` can still satisfy the predicate via a
// `b=7` row, so treating that equality as droppable on its own would
// produce a false negative. Such equalities are simply not collected,
// which leaves the bloom pruner conservative (it keeps the block) rather
// than unsound.
func CollectEqualities(expr Expr) []Equality {
	var out []Equality
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case Equality:
			out = append(out, v)
		case Comparison:
			if v.Op == OpEQ {
				out = append(out, Equality{Column: v.Column, Const: v.Const})
			}
		case And:
			for _, o := range v.Operands {
				walk(o)
			}
		}
	}
	walk(expr)
	return out
}
