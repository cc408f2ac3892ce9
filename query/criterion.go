package query

import (
	"strings"

	"github.com/Konsultn-Engineering/registrar/optional"
)

// Criterion pairs an attribute with a value that may be absent. Absent
// criteria contribute neither text nor parameters to a statement.
type Criterion struct {
	Attribute string
	Operator  Operator

	value   any
	present bool
	null    bool
}

// Eq is a present equality criterion. Zero values are present values.
func Eq(attribute string, value any) Criterion {
	return Criterion{Attribute: attribute, Operator: OpEqual, value: value, present: true}
}

// Absent is a criterion that emits nothing.
func Absent(attribute string) Criterion {
	return Criterion{Attribute: attribute, Operator: OpEqual}
}

// When turns an optional filter into an equality criterion. Null counts as
// absent: a filter never matches on NULL.
func When[T any](attribute string, v optional.Value[T]) Criterion {
	if val, ok := v.Get(); ok {
		return Eq(attribute, val)
	}
	return Absent(attribute)
}

// Contains is a LIKE criterion that matches v anywhere in the column.
// LIKE wildcards inside v are escaped.
func Contains(attribute string, v optional.Value[string]) Criterion {
	val, ok := v.Get()
	if !ok {
		return Absent(attribute).With(OpLike)
	}
	return Eq(attribute, "%"+escapeLike(val)+"%").With(OpLike)
}

// AnyOf matches any element of a present, non-empty sequence.
func AnyOf[T any](attribute string, v optional.Value[[]T]) Criterion {
	vals, ok := v.Get()
	if !ok || len(vals) == 0 {
		return Absent(attribute).With(OpAny)
	}
	return Eq(attribute, vals).With(OpAny)
}

// Assign turns an optional field into a SET candidate. Unlike When, an
// explicit null is present and binds SQL NULL.
func Assign[T any](attribute string, v optional.Value[T]) Criterion {
	switch {
	case v.IsPresent():
		val, _ := v.Get()
		return Eq(attribute, val)
	case v.IsNull():
		return Criterion{Attribute: attribute, Operator: OpEqual, present: true, null: true}
	default:
		return Absent(attribute)
	}
}

// With returns a copy using op.
func (c Criterion) With(op Operator) Criterion {
	c.Operator = op
	return c
}

func (c Criterion) IsPresent() bool { return c.present }

// IsNull reports an explicit null; such a criterion is also present.
func (c Criterion) IsNull() bool { return c.null }

// Value returns the bound value and whether the criterion is present.
func (c Criterion) Value() (any, bool) { return c.value, c.present }

// Criteria is an ordered set of criteria. Order fixes emission order.
type Criteria []Criterion

// Present counts the present criteria.
func (cs Criteria) Present() int {
	n := 0
	for _, c := range cs {
		if c.present {
			n++
		}
	}
	return n
}

// Attributes lists attribute names in order, present or not.
func (cs Criteria) Attributes() []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Attribute
	}
	return names
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
