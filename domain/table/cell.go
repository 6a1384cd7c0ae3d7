package table

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CellKind tags the variant held by a Cell
type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
)

func (k CellKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value: Empty, Text or Number.
// Number cells keep the text they were read from so string operators
// compare against what the sheet displays.
type Cell struct {
	kind CellKind
	text string
	num  float64
}

// Empty returns the empty cell
func Empty() Cell {
	return Cell{}
}

// Text returns a text cell; the empty string yields Empty
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: KindText, text: s}
}

// Number returns a numeric cell rendered in its shortest form
func Number(f float64) Cell {
	return Cell{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64), num: f}
}

// Parse classifies raw sheet text. Finite numeric text becomes a Number cell
// that keeps the original spelling, anything else non-empty becomes Text.
func Parse(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if f, ok := parseNumber(s); ok {
		return Cell{kind: KindNumber, text: s, num: f}
	}
	return Cell{kind: KindText, text: s}
}

// Kind returns the variant tag
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsEmpty reports whether the cell holds no value
func (c Cell) IsEmpty() bool {
	return c.kind == KindEmpty
}

// String returns the displayed text, "" for Empty
func (c Cell) String() string {
	return c.text
}

// Float coerces the cell to a number. Empty cells and text that does not
// parse report false.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindText:
		return parseNumber(c.text)
	default:
		return 0, false
	}
}

// FloatOrZero is Float with failed coercions mapped to 0
func (c Cell) FloatOrZero() float64 {
	f, ok := c.Float()
	if !ok {
		return 0
	}
	return f
}

// MarshalJSON emits numbers as JSON numbers, text as strings and Empty as "".
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == KindNumber {
		return json.Marshal(c.num)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a JSON string, number or null
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Empty()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*c = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Parse(s)
	return nil
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
