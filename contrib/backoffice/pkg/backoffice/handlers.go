package backoffice

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	fernanden "github.com/fernanden/fernanden.go"
	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/models"
)

const maxBodyBytes = 1 << 20

// errEntityNotFound is returned for an {entity} path segment that is not in
// the catalog.
var errEntityNotFound = errors.New("unknown entity")

type errorBody struct {
	Error string `json:"error"`
}

type listBody struct {
	Entity string       `json:"entity"`
	Count  int          `json:"count"`
	Rows   []models.Row `json:"rows"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps an error from the entity services to an HTTP status and
// the message shown to the client.
func statusFor(err error) (int, string) {
	var (
		notFound   *fernanden.NotFoundError
		validation *fernanden.ValidationError
		conflict   *fernanden.ConflictError
		schema     *fernanden.SchemaError
		failure    *fernanden.QueryFailure
	)
	switch {
	case errors.Is(err, errEntityNotFound):
		return http.StatusNotFound, "unknown entity"
	case errors.Is(err, constants.ErrReadOnly):
		return http.StatusServiceUnavailable, "back-office is in read-only mode"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &conflict):
		return http.StatusConflict, "concurrent update, try again"
	case connection.IsKind(err, connection.KindConstraint):
		return http.StatusConflict, "conflicts with an existing row"
	case errors.As(err, &schema), errors.As(err, &failure):
		return http.StatusBadGateway, "storage query failed"
	}
	return http.StatusInternalServerError, "internal error"
}

func (a *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		a.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	respondJSON(w, status, errorBody{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func decodeRow(r *http.Request) (models.Row, error) {
	var row models.Row
	if err := decodeBody(r, &row); err != nil {
		return nil, &fernanden.ValidationError{Field: "body", Reason: "must be a JSON object", Err: err}
	}
	return row, nil
}

func (a *App) entity(r *http.Request) (*fernanden.Entity, error) {
	name := mux.Vars(r)["entity"]
	e, ok := a.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errEntityNotFound, name)
	}
	return e, nil
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"backend":   a.config.Backend,
		"read_only": a.IsReadOnly(),
	})
}

func (a *App) handleEntities(w http.ResponseWriter, r *http.Request) {
	out := make([]fernanden.Descriptor, 0, a.catalog.Len())
	for _, name := range a.catalog.Names() {
		out = append(out, a.catalog.MustGet(name))
	}
	respondJSON(w, http.StatusOK, out)
}

func flag(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &fernanden.ValidationError{Field: name, Reason: "must be true or false"}
	}
	return b, nil
}

// handleList picks one read per request, in this order: q, featured,
// published, category, then the first declared filter column present in
// the query string.
func (a *App) handleList(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	ctx := r.Context()
	params := r.URL.Query()

	featured, err := flag(r, "featured")
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	published, err := flag(r, "published")
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	var rows []models.Row
	switch {
	case params.Has("q"):
		rows, err = e.Search(ctx, params.Get("q"))
	case featured:
		rows, err = e.GetFeatured(ctx)
	case published:
		rows, err = e.GetPublished(ctx)
	case params.Has("category"):
		rows, err = e.GetByCategory(ctx, params.Get("category"))
	default:
		column := ""
		for _, c := range e.Descriptor().FilterColumns {
			if params.Has(c) {
				column = c
				break
			}
		}
		if column != "" {
			rows, err = e.GetBy(ctx, column, params.Get(column))
		} else {
			rows, err = e.GetAll(ctx)
		}
	}
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listBody{Entity: e.Name(), Count: len(rows), Rows: rows})
}

func (a *App) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	row, err := e.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (a *App) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	row, err := e.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (a *App) handleCreate(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	fields, err := decodeRow(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	row, err := e.Create(r.Context(), fields)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, row)
}

func (a *App) handleUpdate(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	fields, err := decodeRow(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	idColumn := e.Descriptor().IDColumn
	delete(fields, idColumn)
	row, err := e.Update(r.Context(), mux.Vars(r)["id"], fields)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}

func (a *App) handleDelete(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := e.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleToggleFeatured(w http.ResponseWriter, r *http.Request) {
	e, err := a.entity(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	row, err := e.ToggleFeatured(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, row)
}
