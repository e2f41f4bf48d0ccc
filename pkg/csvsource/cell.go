package csvsource

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
)

// Cell is one typed CSV value. Raw is the trimmed source text.
type Cell struct {
	Kind Kind
	Raw  string
	Num  float64
	Bool bool
}

var floatPattern = regexp.MustCompile(`^-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?$`)

// Integers beyond ±2^53 lose precision as float64 and are kept as text.
const maxExactFloat = 1 << 53

// TypeCell infers the type of a raw cell: empty text is null, true/false in
// lower or upper case is a bool, plain decimal or exponent notation is a number,
// anything else stays a string.
func TypeCell(raw string) Cell {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return Cell{Kind: KindNull}
	case "true", "TRUE":
		return Cell{Kind: KindBool, Raw: raw, Bool: true}
	case "false", "FALSE":
		return Cell{Kind: KindBool, Raw: raw}
	}
	if floatPattern.MatchString(raw) {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && math.Abs(v) <= maxExactFloat {
			return Cell{Kind: KindNumber, Raw: raw, Num: v}
		}
	}
	return Cell{Kind: KindString, Raw: raw}
}

func StringCell(raw string) Cell {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cell{Kind: KindNull}
	}
	return Cell{Kind: KindString, Raw: raw}
}

// String renders the cell the way it would print in the dashboard: numbers in
// shortest form (so "1.0" and "1" both read "1"), null as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindNull:
		return ""
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.Bool)
	default:
		return c.Raw
	}
}

// Row maps header names to cells. Columns missing from a short record are absent.
type Row map[string]Cell

func (r Row) Has(key string) bool {
	c, ok := r[key]
	return ok && c.Kind != KindNull
}

func (r Row) Float(key string) (float64, bool) {
	c, ok := r[key]
	if !ok || c.Kind != KindNumber {
		return 0, false
	}
	return c.Num, true
}

// FloatPtr returns nil for absent, null and non-numeric cells.
func (r Row) FloatPtr(key string) *float64 {
	v, ok := r.Float(key)
	if !ok {
		return nil
	}
	return &v
}

func (r Row) String(key string) string {
	return r[key].String()
}

func (r Row) Int(key string) (int, bool) {
	v, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// FirstFloat returns the first numeric cell among keys, for files that spell the
// same column differently.
func (r Row) FirstFloat(keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := r.Float(k); ok {
			return v, true
		}
	}
	return 0, false
}

// FirstString returns the first non-null cell among keys as text.
func (r Row) FirstString(keys ...string) (string, bool) {
	for _, k := range keys {
		if r.Has(k) {
			return r.String(k), true
		}
	}
	return "", false
}
