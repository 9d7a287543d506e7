package role

import (
	"fmt"
	"strings"
)

type Brand string

const (
	TMH     Brand = "tmh"
	Raymond Brand = "raymond"
)

var brandDisplay = map[Brand]string{
	TMH:     "TMH",
	Raymond: "Raymond",
}

func AllBrands() []Brand { return []Brand{TMH, Raymond} }

func ParseBrand(raw string) (Brand, error) {
	b := Brand(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := brandDisplay[b]; !ok {
		return "", fmt.Errorf("unknown brand %q", raw)
	}
	return b, nil
}

func (b Brand) String() string { return string(b) }

// Display is the label used in headings and backend source attributions.
func (b Brand) Display() string {
	if d, ok := brandDisplay[b]; ok {
		return d
	}
	return strings.ToUpper(string(b))
}

// Upper is the form used in empty-state and confirmation messages.
func (b Brand) Upper() string { return strings.ToUpper(string(b)) }
