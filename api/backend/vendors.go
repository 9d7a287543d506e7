package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

func (c *Client) RawVendors(ctx context.Context, r role.Role) (model.RawVendors, error) {
	out := model.RawVendors{}
	if err := c.call(ctx, r, http.MethodGet, "raw vendors", "/api/vendors/raw", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) HarmonizedVendors(ctx context.Context, r role.Role) ([]model.HarmonizedVendor, error) {
	return getList[model.HarmonizedVendor](ctx, c, r, "harmonized vendors", "/api/vendors/harmonized")
}

func (c *Client) MergeVendors(ctx context.Context, r role.Role, req model.MergeRequest) (model.MutationResult, error) {
	return c.mutate(ctx, r, "vendor merge", "/api/vendors/merge", req)
}

// RawVendorsCSV returns the backend's brand-scoped vendor CSV.
func (c *Client) RawVendorsCSV(ctx context.Context, r role.Role, brand role.Brand) ([]byte, error) {
	return c.csv(ctx, r, "raw vendors csv", "/api/vendors/raw/csv?brand="+url.QueryEscape(brand.String()))
}

func (c *Client) HarmonizedVendorsCSV(ctx context.Context, r role.Role) ([]byte, error) {
	return c.csv(ctx, r, "harmonized vendors csv", "/api/vendors/harmonized/csv")
}

// csv passes text bodies through; a JSON body is only ever an error.
func (c *Client) csv(ctx context.Context, r role.Role, resource, path string) ([]byte, error) {
	raw, contentType, err := c.roundTrip(ctx, r, http.MethodGet, resource, path, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if strings.Contains(contentType, "json") || (len(trimmed) > 0 && trimmed[0] == '{') {
		var env errorEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if msg, ok := env.message(); ok {
				return nil, &APIError{Resource: resource, Message: msg}
			}
		}
	}
	return raw, nil
}
