package table

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the scalar carried by a Value.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindString
	KindTime
)

// Value is a single cell in a row table: a number, a string, a date, or a
// missing-value marker. The zero Value is missing.
type Value struct {
	kind Kind
	num  decimal.Decimal
	str  string
	t    time.Time
}

// Missing is the missing-value marker.
var Missing = Value{}

// Num returns a numeric Value.
func Num(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// NumInt returns a numeric Value from an integer.
func NumInt(i int64) Value {
	return Num(decimal.NewFromInt(i))
}

// Str returns a string Value.
func Str(s string) Value {
	return Value{kind: KindString, str: s}
}

// Time returns a date Value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

// dateLayouts are the cell date formats recognized when parsing. Spreadsheet
// libraries render dates in a handful of shapes depending on the cell format.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/06 15:04",
	"01-02-06",
}

// ParseCell converts the text form of a spreadsheet cell into a Value. Empty
// cells are missing; numeric text (thousands separators tolerated) becomes a
// number; everything else stays a string.
func ParseCell(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Missing
	}
	if d, err := decimal.NewFromString(strings.ReplaceAll(trimmed, ",", "")); err == nil {
		return Num(d)
	}
	return Str(trimmed)
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the value is the missing marker.
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Decimal returns the numeric form of the value, if it has one.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Decimal{}, false
	}
	return v.num, true
}

// AsTime returns the value as a date. String values are parsed against the
// recognized date layouts; unparsable values report false.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindTime:
		return v.t, true
	case KindString:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v.str); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// String returns the cell text form of the value. Missing values render as
// the empty string; dates use ISO form. Used for equality filters and flat
// file output.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return v.num.String()
	case KindString:
		return v.str
	case KindTime:
		return v.t.Format("2006-01-02")
	default:
		return ""
	}
}
