package backend

import (
	"context"
	"net/http"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

func (c *Client) DataQualityAnalytics(ctx context.Context, r role.Role) (model.DataQualityAnalytics, error) {
	var out model.DataQualityAnalytics
	err := c.call(ctx, r, http.MethodGet, "data quality analytics", "/api/analytics/data-quality", nil, &out)
	return out, err
}

func (c *Client) VarianceAnalytics(ctx context.Context, r role.Role) (model.VarianceAnalytics, error) {
	var out model.VarianceAnalytics
	err := c.call(ctx, r, http.MethodGet, "variance analytics", "/api/analytics/variances", nil, &out)
	return out, err
}

func (c *Client) SubmissionAnalytics(ctx context.Context, r role.Role) (model.SubmissionAnalytics, error) {
	var out model.SubmissionAnalytics
	err := c.call(ctx, r, http.MethodGet, "submission analytics", "/api/analytics/submissions", nil, &out)
	return out, err
}

func (c *Client) MappingImpact(ctx context.Context, r role.Role) (model.MappingImpact, error) {
	var out model.MappingImpact
	err := c.call(ctx, r, http.MethodGet, "mapping impact", "/api/analytics/mapping-impact", nil, &out)
	return out, err
}

func (c *Client) VendorHarmonization(ctx context.Context, r role.Role) (model.VendorHarmonizationAnalytics, error) {
	var out model.VendorHarmonizationAnalytics
	err := c.call(ctx, r, http.MethodGet, "vendor harmonization", "/api/analytics/vendor-harmonization", nil, &out)
	return out, err
}
