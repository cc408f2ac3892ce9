package query

// Operator is the comparison a criterion renders with.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "<>"
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLike               Operator = "LIKE"
	OpILike              Operator = "ILIKE"

	// OpAny binds a sequence as one array parameter: col = ANY($n).
	OpAny Operator = "= ANY"
)

// Connectors between predicates.
const (
	connAnd = "AND"
	connOr  = "OR"
)

func (o Operator) valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual,
		OpGreaterThan, OpGreaterThanOrEqual, OpLike, OpILike, OpAny:
		return true
	}
	return false
}

// render writes "<column> <op> <placeholder>".
func (o Operator) render(column, placeholder string) string {
	if o == OpAny {
		return column + " = ANY(" + placeholder + ")"
	}
	return column + " " + string(o) + " " + placeholder
}
