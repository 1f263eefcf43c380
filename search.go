package fernanden

import (
	"strings"
	"unicode/utf8"

	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// NormalizeSearch trims text and cuts it to the first MaxSearchLength
// characters. It returns "" for blank input.
func NormalizeSearch(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > constants.MaxSearchLength {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:constants.MaxSearchLength]))
	}
	return text
}

// searchFilter matches term case-insensitively in any of columns.
func searchFilter(term string, columns []string) query.Filter {
	filters := make([]query.Filter, len(columns))
	for i, c := range columns {
		filters[i] = query.IContains(c, term)
	}
	return query.Or(filters...)
}
