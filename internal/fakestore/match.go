package fakestore

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

func matchAll(r models.Row, filters []query.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := match(r, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func match(r models.Row, f query.Filter) (bool, error) {
	if f.Op == query.OpOr {
		for _, sub := range f.Any {
			ok, err := match(r, sub)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	v := r[f.Column]
	switch f.Op {
	case query.OpEq:
		if f.Value == nil {
			return v == nil, nil
		}
		return v != nil && equal(v, f.Value), nil
	case query.OpNeq:
		if f.Value == nil {
			return v != nil, nil
		}
		return v != nil && !equal(v, f.Value), nil
	case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		if v == nil || f.Value == nil {
			return false, nil
		}
		c, ok := compare(v, f.Value)
		if !ok {
			return false, fmt.Errorf("cannot compare %T with %T", v, f.Value)
		}
		switch f.Op {
		case query.OpGt:
			return c > 0, nil
		case query.OpGte:
			return c >= 0, nil
		case query.OpLt:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case query.OpIs, query.OpIsNot:
		var hit bool
		if f.Value == nil {
			hit = v == nil
		} else {
			b, _ := f.Value.(bool)
			got, ok := v.(bool)
			hit = ok && got == b
		}
		if f.Op == query.OpIsNot {
			return !hit, nil
		}
		return hit, nil
	case query.OpIn:
		values, _ := f.Value.([]any)
		for _, want := range values {
			if v != nil && equal(v, want) {
				return true, nil
			}
		}
		return false, nil
	case query.OpIContains:
		s, ok := v.(string)
		if !ok {
			return false, nil
		}
		text, _ := f.Value.(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(text)), nil
	case query.OpContains:
		return contains(v, f.Value), nil
	}
	return false, fmt.Errorf("%w: %s", query.ErrUnsupportedOperator, f.Op)
}

func contains(have, want any) bool {
	haveList := toList(have)
	wantList := toList(want)
	if haveList == nil || wantList == nil {
		return false
	}
	for _, w := range wantList {
		found := false
		for _, h := range haveList {
			if equal(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func toList(v any) []any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func equal(a, b any) bool {
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compare orders two non-nil values of compatible types.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}

// less orders rows the way Postgres does by default: nulls sort last in
// ascending order and first in descending order.
func less(a, b models.Row, ordering query.Ordering) bool {
	for _, o := range ordering {
		av, bv := a[o.Column], b[o.Column]
		var c int
		switch {
		case av == nil && bv == nil:
			c = 0
		case av == nil:
			c = 1
		case bv == nil:
			c = -1
		default:
			c, _ = compare(av, bv)
		}
		if o.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}
