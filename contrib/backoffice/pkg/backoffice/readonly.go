package backoffice

import (
	"net/http"

	"github.com/fernanden/fernanden.go/pkg/constants"
)

// writable rejects the request while the app is read-only.
func (a *App) writable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.IsReadOnly() {
			a.respondError(w, r, constants.ErrReadOnly)
			return
		}
		next(w, r)
	}
}

type readOnlyRequest struct {
	ReadOnly *bool `json:"read_only"`
}

func (a *App) handleSetReadOnly(w http.ResponseWriter, r *http.Request) {
	var req readOnlyRequest
	if err := decodeBody(r, &req); err != nil || req.ReadOnly == nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "body must be {\"read_only\": true|false}"})
		return
	}
	a.SetReadOnly(*req.ReadOnly)
	respondJSON(w, http.StatusOK, map[string]bool{"read_only": a.IsReadOnly()})
}
