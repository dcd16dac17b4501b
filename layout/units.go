package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.
// Page geometry is kept in mm; font fitting works in CSS pixels (96 per inch).

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels
)

// Conversion constants between pt, px and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM converts to millimeters. Unit-less values are taken as mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	case UnitPX:
		return l.Value * PxToMm
	default:
		return l.Value
	}
}

// ToPX converts to CSS pixels.
func (l Length) ToPX() float64 {
	if l.Unit == UnitPX {
		return l.Value
	}
	return l.ToMM() * MmToPx
}

func (l Length) ToPT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// DefaultLineFactor is used when no line-height is given.
const DefaultLineFactor = 1.2

// LineHeightSpec is either a factor (1.2x) or an absolute length (18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "1.2x", "1.2" or an absolute length. Empty or
// invalid input yields the default factor.
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.TrimSpace(value)
	if v == "" {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: DefaultLineFactor}
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
	}
	if l := ParseRawLengthStr(v); l.Value > 0 && l.Unit != UnitNone {
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: DefaultLineFactor}
}

// Pixels returns an absolute line height in px, or 0 for a factor.
func (s LineHeightSpec) Pixels() float64 {
	if s.Kind != LineHeightAbsolute {
		return 0
	}
	return s.Len.ToPX()
}

// Ratio returns line height divided by font size, both in px.
func (s LineHeightSpec) Ratio(fontSizePx float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		if fontSizePx <= 0 {
			return DefaultLineFactor
		}
		return s.Len.ToPX() / fontSizePx
	default:
		if s.Factor <= 0 {
			return DefaultLineFactor
		}
		return s.Factor
	}
}
