package postgrest

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/fernanden/fernanden.go/pkg/connection"
)

// apiError is the JSON body PostgREST returns for failed requests.
type apiError struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details"`
	Hint    *string `json:"hint"`
}

var schemaCodes = map[string]bool{
	"42703":    true, // undefined_column
	"42P01":    true, // undefined_table
	"42883":    true, // undefined_function
	"PGRST200": true, // relationship not in schema cache
	"PGRST204": true, // column not in schema cache
	"PGRST205": true, // table not in schema cache
}

var queryCodes = map[string]bool{
	"42601":    true, // syntax_error
	"42804":    true, // datatype_mismatch
	"22P02":    true, // invalid_text_representation
	"PGRST100": true, // unparseable query string
	"PGRST102": true, // invalid body
	"PGRST103": true, // invalid range
	"PGRST118": true, // order by related table
}

var authCodes = map[string]bool{
	"42501":    true, // insufficient_privilege
	"PGRST301": true,
	"PGRST302": true,
}

// classify maps a PostgREST error response to a connection.Kind. The code
// field decides; the HTTP status is only consulted when no code is known.
func classify(status int, e apiError) connection.Kind {
	switch {
	case schemaCodes[e.Code]:
		return connection.KindSchema
	case queryCodes[e.Code]:
		return connection.KindQuery
	case authCodes[e.Code]:
		return connection.KindAuth
	case e.Code == "PGRST116":
		return connection.KindNotFound
	case strings.HasPrefix(e.Code, "23"):
		return connection.KindConstraint
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return connection.KindAuth
	case status == http.StatusNotFound:
		return connection.KindSchema
	case status == http.StatusConflict:
		return connection.KindConstraint
	case status >= 400 && status < 500:
		return connection.KindQuery
	default:
		return connection.KindTransport
	}
}

func decodeError(status int, body []byte) *connection.StoreError {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || (e.Code == "" && e.Message == "") {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &connection.StoreError{Kind: classify(status, apiError{}), Message: msg}
	}
	se := &connection.StoreError{
		Kind:    classify(status, e),
		Code:    e.Code,
		Message: e.Message,
	}
	if e.Hint != nil {
		se.Hint = *e.Hint
	}
	return se
}
