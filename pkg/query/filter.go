package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEq        Op = "eq"
	OpNeq       Op = "neq"
	OpGt        Op = "gt"
	OpGte       Op = "gte"
	OpLt        Op = "lt"
	OpLte       Op = "lte"
	OpIs        Op = "is"
	OpIsNot     Op = "not.is"
	OpIn        Op = "in"
	OpIContains Op = "icontains"
	OpContains  Op = "cs"
	OpOr        Op = "or"
)

// Filter is a single predicate, or a group of predicates OR-ed together
// when Op is OpOr.
type Filter struct {
	Column string
	Op     Op
	Value  any
	Any    []Filter
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }
func Gt(column string, value any) Filter  { return Filter{Column: column, Op: OpGt, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func Lt(column string, value any) Filter  { return Filter{Column: column, Op: OpLt, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }

// Is matches NULL, TRUE or FALSE. value must be nil or a bool.
func Is(column string, value any) Filter { return Filter{Column: column, Op: OpIs, Value: value} }

// IsNot is the negation of Is.
func IsNot(column string, value any) Filter { return Filter{Column: column, Op: OpIsNot, Value: value} }

func In(column string, values ...any) Filter {
	return Filter{Column: column, Op: OpIn, Value: append([]any(nil), values...)}
}

// IContains matches rows whose column contains text, ignoring case.
func IContains(column, text string) Filter {
	return Filter{Column: column, Op: OpIContains, Value: text}
}

// Contains matches array or JSON columns containing value.
func Contains(column string, value any) Filter {
	return Filter{Column: column, Op: OpContains, Value: value}
}

// Or groups filters so that any of them may match.
func Or(filters ...Filter) Filter {
	return Filter{Op: OpOr, Any: append([]Filter(nil), filters...)}
}

func (f Filter) validate() error {
	switch f.Op {
	case OpOr:
		if len(f.Any) == 0 {
			return fmt.Errorf("or filter needs at least one predicate")
		}
		for _, sub := range f.Any {
			if sub.Op == OpOr {
				return fmt.Errorf("nested or filters are not supported")
			}
			if err := sub.validate(); err != nil {
				return err
			}
		}
		return nil
	case OpIs, OpIsNot:
		switch f.Value.(type) {
		case nil, bool:
		default:
			return fmt.Errorf("%s filter on %q takes null or a boolean, got %T", f.Op, f.Column, f.Value)
		}
	case OpIn:
		if _, ok := f.Value.([]any); !ok {
			return fmt.Errorf("in filter on %q takes a list", f.Column)
		}
	case OpIContains:
		if _, ok := f.Value.(string); !ok {
			return fmt.Errorf("icontains filter on %q takes a string", f.Column)
		}
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains:
	default:
		return fmt.Errorf("unknown operator %q", f.Op)
	}
	return checkIdent("filter column", f.Column)
}

func (f Filter) String() string {
	if f.Op == OpOr {
		parts := make([]string, len(f.Any))
		for i, sub := range f.Any {
			parts[i] = sub.String()
		}
		return "or=(" + strings.Join(parts, ",") + ")"
	}
	return fmt.Sprintf("%s=%s.%v", f.Column, f.Op, formatValue(f.Value))
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = formatValue(item)
		}
		return "(" + strings.Join(parts, ",") + ")"
	}
	return fmt.Sprint(v)
}

// Equal reports whether two filter lists are the same predicates in the
// same order.
func Equal(a, b []Filter) bool {
	return reflect.DeepEqual(a, b)
}
