package postgrest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/constants"
	"github.com/fernanden/fernanden.go/pkg/logger"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

// RESTPath is where Supabase mounts PostgREST under the project URL.
const RESTPath = "/rest/v1"

// Connection talks to a PostgREST endpoint such as the Supabase REST API.
type Connection struct {
	BaseURL string
	APIKey  string
	Schema  string

	httpClient *http.Client
	logger     logger.Logger
}

var _ connection.Connection = (*Connection)(nil)

func New(p *connection.Config) *Connection {
	con := Connection{
		BaseURL: strings.TrimRight(p.BaseURL, "/"),
		APIKey:  p.APIKey,
		Schema:  p.Schema,
		logger:  p.Logger,
	}
	if con.logger == nil {
		con.logger = logger.Nop{}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	if con.httpClient == nil {
		con.httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &con
}

func (c *Connection) SetTimeout(timeout time.Duration) *Connection {
	c.httpClient.Timeout = timeout
	return c
}

func (c *Connection) SetHTTPClient(client *http.Client) *Connection {
	c.httpClient = client
	return c
}

func (c *Connection) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Connection) Select(ctx context.Context, q query.Query) ([]models.Row, error) {
	params, err := selectParams(q)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, q.Table(), encode(params), nil)
}

func (c *Connection) Insert(ctx context.Context, table string, row models.Row) (models.Row, error) {
	if !query.ValidIdentifier(table) {
		return nil, fmt.Errorf("%w: table %q", query.ErrInvalidIdentifier, table)
	}
	rows, err := c.do(ctx, http.MethodPost, table, "", row)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, connection.NewError(connection.KindTransport, "", "insert returned no representation", nil)
	}
	return rows[0], nil
}

func (c *Connection) Update(ctx context.Context, q query.Query, set models.Row) ([]models.Row, error) {
	if len(set) == 0 {
		return nil, query.ErrEmptyChange
	}
	params, err := writeParams(q)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPatch, q.Table(), encode(params), set)
}

func (c *Connection) Delete(ctx context.Context, q query.Query) (int, error) {
	params, err := writeParams(q)
	if err != nil {
		return 0, err
	}
	rows, err := c.do(ctx, http.MethodDelete, q.Table(), encode(params), nil)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *Connection) do(ctx context.Context, method, table, rawQuery string, body any) ([]models.Row, error) {
	if c.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}
	if c.APIKey == "" {
		return nil, constants.ErrNoAPIKey
	}

	u := c.BaseURL + RESTPath + "/" + table
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if c.Schema != "" {
		if method == http.MethodGet {
			req.Header.Set("Accept-Profile", c.Schema)
		} else {
			req.Header.Set("Content-Profile", c.Schema)
		}
	}

	respData, err := c.MakeRequest(req)
	if err != nil {
		c.logger.Debug("postgrest request failed", "method", method, "table", table, "query", rawQuery, "error", err)
		return nil, err
	}
	c.logger.Debug("postgrest request", "method", method, "table", table, "query", rawQuery)

	if len(bytes.TrimSpace(respData)) == 0 {
		return []models.Row{}, nil
	}
	rows := []models.Row{}
	if err := json.Unmarshal(respData, &rows); err != nil {
		return nil, connection.NewError(connection.KindTransport, "", "unexpected response body", err)
	}
	return rows, nil
}

// MakeRequest sends req and returns the body of a 2xx response. Any other
// status is decoded into a *connection.StoreError.
func (c *Connection) MakeRequest(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, connection.NewError(connection.KindTransport, "", constants.ErrTimeout.Error(), err)
		}
		return nil, connection.NewError(connection.KindTransport, "", "error making HTTP request", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connection.NewError(connection.KindTransport, "", "error reading HTTP response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}
	return nil, decodeError(resp.StatusCode, respBytes)
}
