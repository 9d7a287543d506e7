// Package role resolves the dashboard persona and the brand it is scoped to.
package role

import (
	"context"
	"strings"
)

// CookieName is the key the active role is persisted under.
const CookieName = "tmhna_role"

type Role string

const (
	CorporateReviewer Role = "maya"
	RaymondController Role = "liam"
	TMHController     Role = "ethan"
)

// Default is used whenever no role, or an unknown one, is persisted.
const Default = CorporateReviewer

var known = []Role{CorporateReviewer, RaymondController, TMHController}

var labels = map[Role]string{
	CorporateReviewer: "Corporate Reviewer",
	RaymondController: "Raymond Controller",
	TMHController:     "TMH Controller",
}

var brandOf = map[Role]Brand{
	RaymondController: Raymond,
	TMHController:     TMH,
}

// Parse is the only place unknown role values are normalised.
func Parse(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := labels[r]; ok {
		return r
	}
	return Default
}

// All returns the known roles in switcher order.
func All() []Role {
	out := make([]Role, len(known))
	copy(out, known)
	return out
}

func (r Role) String() string { return string(r) }

func (r Role) Label() string {
	if l, ok := labels[r]; ok {
		return l
	}
	return labels[Default]
}

// Brand reports the brand a controller is scoped to. The corporate
// reviewer sees every brand and returns false.
func (r Role) Brand() (Brand, bool) {
	b, ok := brandOf[r]
	return b, ok
}

func (r Role) IsCorporate() bool { return r == CorporateReviewer }

// Privileged roles may see mapping governance, mapping impact and vendor coverage.
func (r Role) Privileged() bool { return r == CorporateReviewer }

// Brands lists the brands whose data this role may see.
func (r Role) Brands() []Brand {
	if b, ok := r.Brand(); ok {
		return []Brand{b}
	}
	return AllBrands()
}

type ctxKey struct{}

func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

// FromContext returns the role stored by the request middleware, or Default.
func FromContext(ctx context.Context) Role {
	if r, ok := ctx.Value(ctxKey{}).(Role); ok {
		return r
	}
	return Default
}
