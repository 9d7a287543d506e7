package backend

import (
	"context"
	"net/http"
	"net/url"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

func (c *Client) RawRows(ctx context.Context, r role.Role) ([]model.RawRow, error) {
	return getList[model.RawRow](ctx, c, r, "raw data", "/api/financial/raw")
}

func (c *Client) RecordsCount(ctx context.Context, r role.Role) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.call(ctx, r, http.MethodGet, "records count", "/api/financial/records-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Ping checks the backend answers; used by the heartbeat.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.RecordsCount(ctx, role.Default)
	return err
}

func (c *Client) DataQuality(ctx context.Context, r role.Role, brand role.Brand) (model.QualityReport, error) {
	var out model.QualityReport
	err := c.call(ctx, r, http.MethodGet, "data quality", "/api/financial/quality/"+brand.String(), nil, &out)
	return out, err
}

func (c *Client) Preview(ctx context.Context, r role.Role, brand role.Brand) (model.Preview, error) {
	var out model.Preview
	err := c.call(ctx, r, http.MethodGet, "preview", "/api/financial/preview/"+brand.String(), nil, &out)
	return out, err
}

func (c *Client) Submit(ctx context.Context, r role.Role, brand role.Brand) (model.MutationResult, error) {
	return c.mutate(ctx, r, "submit", "/api/financial/submit/"+brand.String(), struct{}{})
}

func (c *Client) Submissions(ctx context.Context, r role.Role) ([]model.Submission, error) {
	return getList[model.Submission](ctx, c, r, "submissions", "/api/financial/submissions")
}

func (c *Client) SubmissionRows(ctx context.Context, r role.Role, id string) ([]model.SubmissionRow, error) {
	return getList[model.SubmissionRow](ctx, c, r, "submission rows", "/api/financial/submission/"+url.PathEscape(id)+"/rows")
}

func (c *Client) UpdateSubmissionStatus(ctx context.Context, r role.Role, id, status string) (model.MutationResult, error) {
	body := map[string]string{"status": status}
	return c.mutate(ctx, r, "submission status", "/api/financial/submission/"+url.PathEscape(id)+"/status", body)
}

func (c *Client) BrandApproved(ctx context.Context, r role.Role, brand role.Brand) ([]model.ApprovedRow, error) {
	return getList[model.ApprovedRow](ctx, c, r, "brand approved data", "/api/financial/brand-approved/"+brand.String())
}

func (c *Client) CorporateUnified(ctx context.Context, r role.Role) ([]model.UnifiedRow, error) {
	return getList[model.UnifiedRow](ctx, c, r, "unified view", "/api/financial/corporate-unified")
}

func (c *Client) Variances(ctx context.Context, r role.Role) ([]model.Variance, error) {
	return getList[model.Variance](ctx, c, r, "variances", "/api/financial/variances")
}

func (c *Client) ResetState(ctx context.Context, r role.Role) (model.MutationResult, error) {
	return c.mutate(ctx, r, "reset state", "/api/financial/reset-state", struct{}{})
}
