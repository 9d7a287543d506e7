package model

import (
	"encoding/json"
	"strconv"
)

type VendorRecord struct {
	VendorName  string `json:"Vendor_Name"`
	Address     string `json:"Address"`
	Phone       string `json:"Phone"`
	SourceBrand string `json:"-"`
}

// RawVendors is the raw vendor payload grouped by brand key.
type RawVendors map[string][]VendorRecord

// Flatten returns every record tagged with its source brand, brands in the
// given order.
func (rv RawVendors) Flatten(brands []string) []VendorRecord {
	var out []VendorRecord
	for _, b := range brands {
		for _, v := range rv[b] {
			v.SourceBrand = b
			out = append(out, v)
		}
	}
	return out
}

func (rv RawVendors) Count() int {
	n := 0
	for _, list := range rv {
		n += len(list)
	}
	return n
}

type HarmonizedVendor struct {
	UnifiedVendorID   string     `json:"unified_vendor_id"`
	UnifiedName       string     `json:"unified_name"`
	TMHSourceName     string     `json:"tmh_source_name"`
	RaymondSourceName string     `json:"raymond_source_name"`
	UnifiedAddress    string     `json:"unified_address"`
	UnifiedPhone      string     `json:"unified_phone"`
	Confidence        Confidence `json:"confidence"`
	SourceBrands      []string   `json:"source_brands"`
}

// Harmonized reports whether the record merges vendors from more than one brand.
func (h HarmonizedVendor) Harmonized() bool {
	return h.TMHSourceName != "" && h.RaymondSourceName != ""
}

// Confidence is a match score the backend sends as a number or a string.
type Confidence float64

func (c *Confidence) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		f, err := n.Float64()
		if err != nil {
			return err
		}
		*c = Confidence(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = Confidence(f)
	return nil
}

func (c Confidence) String() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}

type MergeRequest struct {
	VendorIDs      []string `json:"vendor_ids" validate:"min=2,dive,required"`
	UnifiedName    string   `json:"unified_name" validate:"required"`
	UnifiedAddress string   `json:"unified_address"`
	UnifiedPhone   string   `json:"unified_phone"`
}
