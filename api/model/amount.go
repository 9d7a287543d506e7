package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount keeps the backend's textual amount for display and search while
// still allowing arithmetic. The backend sends amounts either as strings
// or as JSON numbers.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) String() string { return string(a) }

// Decimal parses the amount, ignoring thousands separators and currency signs.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.NewReplacer(",", "", "$", "").Replace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// SumAmounts adds every parseable amount; unparseable values are skipped.
func SumAmounts(amounts []Amount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if d, ok := a.Decimal(); ok {
			total = total.Add(d)
		}
	}
	return total
}
