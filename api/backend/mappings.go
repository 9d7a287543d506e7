package backend

import (
	"context"
	"net/http"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

const (
	accountMappingsPath    = "/api/mappings/financial/accounts"
	costCenterMappingsPath = "/api/mappings/financial/cost-centers"
	vendorRulesPath        = "/api/mappings/vendor"
)

func (c *Client) AccountMappings(ctx context.Context, r role.Role) ([]model.AccountMapping, error) {
	return getList[model.AccountMapping](ctx, c, r, "account mappings", accountMappingsPath)
}

// SaveAccountMappings replaces the whole account mapping table.
func (c *Client) SaveAccountMappings(ctx context.Context, r role.Role, rows []model.AccountMapping) (model.MutationResult, error) {
	return c.mutate(ctx, r, "account mappings", accountMappingsPath, map[string]any{"mappings": rows})
}

func (c *Client) CostCenterMappings(ctx context.Context, r role.Role) ([]model.CostCenterMapping, error) {
	return getList[model.CostCenterMapping](ctx, c, r, "cost center mappings", costCenterMappingsPath)
}

// SaveCostCenterMappings replaces the whole cost-center mapping table.
func (c *Client) SaveCostCenterMappings(ctx context.Context, r role.Role, rows []model.CostCenterMapping) (model.MutationResult, error) {
	return c.mutate(ctx, r, "cost center mappings", costCenterMappingsPath, map[string]any{"mappings": rows})
}

// VendorRules falls back to the documented defaults for absent fields.
func (c *Client) VendorRules(ctx context.Context, r role.Role) (model.VendorRules, error) {
	out := model.DefaultVendorRules()
	err := c.call(ctx, r, http.MethodGet, "vendor rules", vendorRulesPath, nil, &out)
	return out, err
}

func (c *Client) SaveVendorRules(ctx context.Context, r role.Role, rules model.VendorRules) (model.MutationResult, error) {
	return c.mutate(ctx, r, "vendor rules", vendorRulesPath, rules)
}
