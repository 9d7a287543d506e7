package backend

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"TmhnaDash/api/model"
	"TmhnaDash/api/role"
)

// Gather runs tasks concurrently and waits for all of them. Each task's
// error lands in its own slot; one failure never cancels its siblings.
func Gather(ctx context.Context, tasks ...func(context.Context) error) []error {
	errs := make([]error, len(tasks))
	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// BrandResult is one brand's share of a joined per-brand load.
type BrandResult[T any] struct {
	Brand role.Brand
	Value T
	Err   error
}

// ForBrands issues fetch for every brand concurrently. Results come back in
// the order of brands regardless of completion order.
func ForBrands[T any](ctx context.Context, brands []role.Brand, fetch func(context.Context, role.Brand) (T, error)) []BrandResult[T] {
	out := make([]BrandResult[T], len(brands))
	tasks := make([]func(context.Context) error, len(brands))
	for i, b := range brands {
		out[i].Brand = b
		tasks[i] = func(ctx context.Context) error {
			out[i].Value, out[i].Err = fetch(ctx, b)
			return out[i].Err
		}
	}
	Gather(ctx, tasks...)
	return out
}

// BrandApprovedAll loads approved rows for each brand concurrently.
func (c *Client) BrandApprovedAll(ctx context.Context, r role.Role, brands []role.Brand) []BrandResult[[]model.ApprovedRow] {
	return ForBrands(ctx, brands, func(ctx context.Context, b role.Brand) ([]model.ApprovedRow, error) {
		return c.BrandApproved(ctx, r, b)
	})
}

// DataQualityAll loads per-brand quality reports concurrently.
func (c *Client) DataQualityAll(ctx context.Context, r role.Role, brands []role.Brand) []BrandResult[model.QualityReport] {
	return ForBrands(ctx, brands, func(ctx context.Context, b role.Brand) (model.QualityReport, error) {
		return c.DataQuality(ctx, r, b)
	})
}

// SubmittedAccounts collects the source accounts already carried by a
// SUBMITTED or APPROVED submission of brand. A submission whose rows fail
// to load is skipped.
func (c *Client) SubmittedAccounts(ctx context.Context, r role.Role, brand role.Brand, subs []model.Submission) map[string]bool {
	var ids []string
	for _, s := range subs {
		if !strings.EqualFold(s.Brand, brand.String()) {
			continue
		}
		if s.Status == model.StatusSubmitted || s.Status == model.StatusApproved {
			ids = append(ids, s.SubmissionID)
		}
	}
	rows := make([][]model.SubmissionRow, len(ids))
	tasks := make([]func(context.Context) error, len(ids))
	for i, id := range ids {
		tasks[i] = func(ctx context.Context) error {
			var err error
			rows[i], err = c.SubmissionRows(ctx, r, id)
			return err
		}
	}
	Gather(ctx, tasks...)

	out := make(map[string]bool)
	for _, list := range rows {
		for _, row := range list {
			if row.SourceAccount != "" {
				out[row.SourceAccount] = true
			}
		}
	}
	return out
}
