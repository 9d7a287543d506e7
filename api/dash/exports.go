package dash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"TmhnaDash/api"
	"TmhnaDash/api/actions"
	"TmhnaDash/api/backend"
	"TmhnaDash/api/constants"
	"TmhnaDash/api/export"
	"TmhnaDash/api/model"
	"TmhnaDash/api/pane"
	"TmhnaDash/api/role"
	"TmhnaDash/internal/session"
)

// Downloadable resources.
const (
	ResourceRawData          = "raw-data"
	ResourceBrandApproved    = "brand-approved"
	ResourceCorporateUnified = "corporate-unified"
	ResourceRawVendors       = "raw-vendors"
	ResourceUnifiedVendors   = "unified-vendors"
)

var (
	ErrNoDownloadData    = errors.New(constants.MsgNoDownloadData)
	ErrUnknownResource   = errors.New("unknown download")
	ErrUnsupportedFormat = errors.New("unsupported download format")
	ErrBrandRequired     = errors.New("a brand is required for this download")
)

// NeedsBrand reports whether resource is exported one brand at a time.
func NeedsBrand(resource string) bool {
	switch resource {
	case ResourceRawData, ResourceBrandApproved, ResourceRawVendors:
		return true
	}
	return false
}

// Download is an encoded export ready to send or write.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

func encode[T any](kind export.Kind, brand role.Brand, rows []T, cols []export.Column[T], ext string, now time.Time) (Download, error) {
	if len(rows) == 0 {
		return Download{}, ErrNoDownloadData
	}
	name := export.Filename(kind, brand, now, ext)
	switch ext {
	case "csv":
		return Download{Filename: name, ContentType: constants.ContentTypeCSV, Body: []byte(export.CSV(rows, cols))}, nil
	case "xlsx":
		body, err := export.XLSX(rows, cols)
		if err != nil {
			return Download{}, fmt.Errorf("encode %s: %w", name, err)
		}
		return Download{Filename: name, ContentType: constants.ContentTypeXLSX, Body: body}, nil
	}
	return Download{}, ErrUnsupportedFormat
}

// rowSource supplies the rows an export serialises.
type rowSource struct {
	raw      func() ([]model.RawRow, error)
	approved func(role.Brand) ([]model.ApprovedRow, error)
	unified  func() ([]model.UnifiedRow, error)
}

// allowed reports whether r may download resource for brand.
func allowed(r role.Role, resource string, brand role.Brand) bool {
	switch resource {
	case ResourceRawData:
		own, ok := r.Brand()
		return ok && own == brand
	case ResourceBrandApproved, ResourceCorporateUnified:
		return r.IsCorporate()
	case ResourceRawVendors:
		own, ok := r.Brand()
		return !ok || own == brand
	case ResourceUnifiedVendors:
		return pane.Vendors.Allows(r, pane.UnifiedVendors)
	}
	return false
}

func (s *Server) buildDownload(ctx context.Context, r role.Role, src rowSource, resource string, brand role.Brand, ext string) (Download, error) {
	if !allowed(r, resource, brand) {
		return Download{}, actions.ErrForbidden
	}
	now := s.now()
	switch resource {
	case ResourceRawData:
		rows, err := src.raw()
		if err != nil {
			return Download{}, err
		}
		return encode(export.KindRawData, brand, rows, export.RawRowColumns, ext, now)
	case ResourceBrandApproved:
		rows, err := src.approved(brand)
		if err != nil {
			return Download{}, err
		}
		return encode(export.KindApprovedData, brand, rows, export.ApprovedRowColumns, ext, now)
	case ResourceCorporateUnified:
		rows, err := src.unified()
		if err != nil {
			return Download{}, err
		}
		return encode(export.KindUnifiedView, "", rows, export.UnifiedRowColumns, ext, now)
	case ResourceRawVendors:
		if ext != "csv" {
			return Download{}, ErrUnsupportedFormat
		}
		body, err := s.client.RawVendorsCSV(ctx, r, brand)
		if err != nil {
			return Download{}, err
		}
		return Download{Filename: export.Filename(export.KindRawVendors, brand, now, ext), ContentType: constants.ContentTypeCSV, Body: body}, nil
	case ResourceUnifiedVendors:
		if ext != "csv" {
			return Download{}, ErrUnsupportedFormat
		}
		body, err := s.client.HarmonizedVendorsCSV(ctx, r)
		if err != nil {
			return Download{}, err
		}
		return Download{Filename: export.Filename(export.KindUnifiedVendor, "", now, ext), ContentType: constants.ContentTypeCSV, Body: body}, nil
	}
	return Download{}, ErrUnknownResource
}

// workspaceRows exports what the workspace displayed. Brand-approved rows
// are fetched when the workspace has none yet.
func (s *Server) workspaceRows(ctx context.Context, sess *session.Session, r role.Role) rowSource {
	return rowSource{
		raw: func() ([]model.RawRow, error) {
			rows, _ := sess.RawRows()
			return rows, nil
		},
		approved: func(b role.Brand) ([]model.ApprovedRow, error) {
			if rows, ok := sess.Approved(b); ok {
				return rows, nil
			}
			rows, err := s.client.BrandApproved(ctx, r, b)
			if err != nil {
				return nil, err
			}
			sess.SetApproved(b, rows)
			return rows, nil
		},
		unified: func() ([]model.UnifiedRow, error) {
			rows, _ := sess.Unified()
			return rows, nil
		},
	}
}

// backendRows always fetches; used outside a browser workspace.
func (s *Server) backendRows(ctx context.Context, r role.Role) rowSource {
	return rowSource{
		raw: func() ([]model.RawRow, error) {
			rows, err := s.client.RawRows(ctx, r)
			if err != nil {
				return nil, err
			}
			own, _ := r.Brand()
			return brandRows(own, rows), nil
		},
		approved: func(b role.Brand) ([]model.ApprovedRow, error) {
			return s.client.BrandApproved(ctx, r, b)
		},
		unified: func() ([]model.UnifiedRow, error) {
			return s.client.CorporateUnified(ctx, r)
		},
	}
}

// Export fetches resource for r and encodes it as ext. Brand-scoped
// resources need a brand; controllers are pinned to their own.
func (s *Server) Export(ctx context.Context, r role.Role, resource string, brand role.Brand, ext string) (Download, error) {
	if own, ok := r.Brand(); ok {
		brand = own
	}
	if brand == "" && NeedsBrand(resource) {
		return Download{}, ErrBrandRequired
	}
	return s.buildDownload(ctx, r, s.backendRows(ctx, r), resource, brand, ext)
}

// handleExport serves /export/{brand}/{resource}.{ext}. brand is "all" for
// cross-brand resources.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, rl := workspace(r)
	vars := mux.Vars(r)
	file := vars["file"]
	ext := strings.TrimPrefix(path.Ext(file), ".")
	resource := strings.TrimSuffix(file, path.Ext(file))

	var brand role.Brand
	if b := vars["brand"]; b != "all" {
		parsed, err := role.ParseBrand(b)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrUnknownBrand)
			return
		}
		brand = parsed
	}

	var (
		d   Download
		err error
	)
	if brand == "" && NeedsBrand(resource) {
		err = ErrBrandRequired
	} else {
		d, err = s.buildDownload(r.Context(), rl, s.workspaceRows(r.Context(), sess, rl), resource, brand, ext)
	}
	switch {
	case err == nil:
		api.RespondWithFile(w, d.ContentType, d.Filename, d.Body)
	case errors.Is(err, ErrNoDownloadData):
		api.RespondWithError(w, http.StatusNotFound, constants.MsgNoDownloadData)
	case errors.Is(err, ErrUnknownResource), errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrBrandRequired):
		api.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, actions.ErrForbidden):
		api.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		api.RespondWithError(w, http.StatusBadGateway, backend.Message(err))
	}
}
