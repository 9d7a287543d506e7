// Package backend is the dashboard's only path to the harmonization API.
// Every method is a single round trip with no retry.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/metrics"
)

// RoleHeader forwards the active role to the backend.
const RoleHeader = "X-Tmhna-Role"

const maxBody = 32 << 20

type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Collectors
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

func (e errorEnvelope) message() (string, bool) {
	raw := bytes.TrimSpace(e.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

// roundTrip issues one request and returns the raw body. Status codes are
// not interpreted; only decode failures and error fields are.
func (c *Client) roundTrip(ctx context.Context, r role.Role, method, resource, path string, body any) (respBody []byte, contentType string, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveBackend(resource, started, err) }()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, "", &FetchError{Resource: resource, Err: err}
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Err: err}
	}
	req.Header.Set(RoleHeader, r.String())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()
	respBody, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, "", &FetchError{Resource: resource, Err: err}
	}
	return respBody, resp.Header.Get("Content-Type"), nil
}

func (c *Client) call(ctx context.Context, r role.Role, method, resource, path string, body, out any) error {
	raw, _, err := c.roundTrip(ctx, r, method, resource, path, body)
	if err != nil {
		return err
	}
	return decode(resource, raw, out)
}

func decode(resource string, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &FetchError{Resource: resource, Err: errors.New("empty response body")}
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if msg, ok := env.message(); ok {
			return &APIError{Resource: resource, Message: msg}
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	return nil
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

func getList[T any](ctx context.Context, c *Client, r role.Role, resource, path string) ([]T, error) {
	var env listEnvelope[T]
	if err := c.call(ctx, r, http.MethodGet, resource, path, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env.Data, nil
}

// mutate posts body and treats a missing ok/success flag as failure.
func (c *Client) mutate(ctx context.Context, r role.Role, resource, path string, body any) (model.MutationResult, error) {
	var res model.MutationResult
	if err := c.call(ctx, r, http.MethodPost, resource, path, body, &res); err != nil {
		return res, err
	}
	if !res.Accepted() {
		msg := res.Message
		if msg == "" {
			msg = "Request was not accepted"
		}
		return res, &APIError{Resource: resource, Message: msg}
	}
	return res, nil
}
