package postgrest

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fernanden/fernanden.go/pkg/query"
)

// reserved characters that force a value to be double quoted inside
// PostgREST filter expressions.
const reserved = `,.:()" `

func quoteValue(s string) string {
	if s == "" || strings.ContainsAny(s, reserved) {
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
		return `"` + r.Replace(s) + `"`
	}
	return s
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ilikePattern escapes LIKE wildcards in text and wraps it in PostgREST's
// "*" wildcards.
func ilikePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "*" + r.Replace(text) + "*"
}

// substring renders a case-insensitive substring match. PostgREST turns
// every "*" of an ilike pattern into "%", so text containing "*" is
// matched with an escaped regular expression instead.
func substring(text string) (op, pattern string) {
	if strings.Contains(text, "*") {
		return "imatch", regexp.QuoteMeta(text)
	}
	return "ilike", ilikePattern(text)
}

func containment(v any) (string, error) {
	switch x := v.(type) {
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = quoteValue(s)
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	case []any:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = quoteValue(scalar(s))
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode containment value: %w", err)
		}
		return string(raw), nil
	}
}

// operand renders "op.value" for a single predicate.
func operand(f query.Filter, quote bool) (string, error) {
	q := func(s string) string {
		if quote {
			return quoteValue(s)
		}
		return s
	}
	switch f.Op {
	case query.OpEq, query.OpNeq, query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		if f.Value == nil && f.Op == query.OpEq {
			return "is.null", nil
		}
		if f.Value == nil && f.Op == query.OpNeq {
			return "not.is.null", nil
		}
		return string(f.Op) + "." + q(scalar(f.Value)), nil
	case query.OpIs:
		return "is." + scalar(f.Value), nil
	case query.OpIsNot:
		return "not.is." + scalar(f.Value), nil
	case query.OpIn:
		values, _ := f.Value.([]any)
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = quoteValue(scalar(v))
		}
		return "in.(" + strings.Join(parts, ",") + ")", nil
	case query.OpIContains:
		text, _ := f.Value.(string)
		op, pattern := substring(text)
		return op + "." + q(pattern), nil
	case query.OpContains:
		c, err := containment(f.Value)
		if err != nil {
			return "", err
		}
		return "cs." + c, nil
	}
	return "", fmt.Errorf("%w: %s on postgrest", query.ErrUnsupportedOperator, f.Op)
}

func filterParams(values url.Values, filters []query.Filter) error {
	for _, f := range filters {
		if f.Op == query.OpOr {
			parts := make([]string, 0, len(f.Any))
			for _, sub := range f.Any {
				op, err := operand(sub, true)
				if err != nil {
					return err
				}
				parts = append(parts, sub.Column+"."+op)
			}
			values.Add("or", "("+strings.Join(parts, ",")+")")
			continue
		}
		op, err := operand(f, false)
		if err != nil {
			return err
		}
		values.Add(f.Column, op)
	}
	return nil
}

// selectParams renders q as PostgREST query parameters.
func selectParams(q query.Query) (url.Values, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	values := url.Values{}
	if cols := q.Columns(); len(cols) > 0 {
		values.Set("select", strings.Join(cols, ","))
	} else {
		values.Set("select", "*")
	}
	if err := filterParams(values, q.Filters()); err != nil {
		return nil, err
	}
	if ordering := q.Ordering(); len(ordering) > 0 {
		values.Set("order", ordering.String())
	}
	if n, ok := q.LimitValue(); ok {
		values.Set("limit", strconv.Itoa(n))
	}
	return values, nil
}

// writeParams renders only the filters of q, for PATCH and DELETE.
func writeParams(q query.Query) (url.Values, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	filters := q.Filters()
	if len(filters) == 0 {
		return nil, query.ErrUnfiltered
	}
	values := url.Values{}
	if err := filterParams(values, filters); err != nil {
		return nil, err
	}
	return values, nil
}

// encode renders values with keys sorted and without escaping the
// characters PostgREST uses as syntax.
func encode(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(escapeValue(v))
		}
	}
	return b.String()
}

func escapeValue(v string) string {
	escaped := url.QueryEscape(v)
	r := strings.NewReplacer("+", "%20", "%28", "(", "%29", ")", "%2C", ",", "%2A", "*", "%3A", ":")
	return r.Replace(escaped)
}
