package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GroupedDecimal is a decimal published as comma-grouped text ("1,234.50") or a plain JSON number.
// Decoding never fails: a malformed value keeps its raw text, reads as zero and records Err.
type GroupedDecimal struct {
	decimal.Decimal
	Raw string
	Err error
}

// NewGroupedDecimal parses s the same way the JSON decoder does
func NewGroupedDecimal(s string) GroupedDecimal {
	var d GroupedDecimal
	d.set(s)
	return d
}

// UnmarshalJSON accepts strings, numbers, empty strings and null
func (d *GroupedDecimal) UnmarshalJSON(data []byte) error {
	d.set(strings.Trim(string(data), `"`))
	return nil
}

func (d *GroupedDecimal) set(s string) {
	s = strings.TrimSpace(s)
	d.Decimal = decimal.Zero
	d.Raw = ""
	d.Err = nil
	if s == "" || s == "null" {
		return
	}

	d.Raw = s
	v, err := ParseGrouped(s)
	if err != nil {
		d.Err = err
		return
	}
	d.Decimal = v
}

// Present reports whether the field carried a parseable value
func (d GroupedDecimal) Present() bool {
	return d.Raw != "" && d.Err == nil
}

// ParseGrouped strips group separators and parses the remainder as a decimal
func ParseGrouped(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(",", "", " ", "").Replace(s)
	return decimal.NewFromString(clean)
}
