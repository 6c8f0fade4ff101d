package tabularcore

import "strings"

// Alignment selects which side of a fixed-width field holds padding.
type Alignment uint8

const (
	// AlignLeft packs content against the left edge; padding trails on the
	// right (the default, typical for text fields).
	AlignLeft Alignment = iota
	// AlignRight packs content against the right edge; padding leads on the
	// left (typical for numeric fields).
	AlignRight
)

// FixedWidthField describes one column's byte offset and width in a
// fixed-width record layout, plus which side padding accumulates on.
type FixedWidthField struct {
	Name      string
	Offset    int
	Width     int
	Alignment Alignment
}

// FixedWidthDialect is the layout configuration for fixed-width records:
// an ordered field list plus padding/trim behavior.
type FixedWidthDialect struct {
	Fields     []FixedWidthField
	PadByte    byte
	TrimFields bool
	Strict     bool
}

// RecordWidth returns the total byte width a row must have to hold every
// configured field.
func (d FixedWidthDialect) RecordWidth() int {
	width := 0
	for _, f := range d.Fields {
		if end := f.Offset + f.Width; end > width {
			width = end
		}
	}
	return width
}

// Validate checks fields are non-overlapping and within bounds, matching
// the invariant style of Dialect.Validate.
func (d FixedWidthDialect) Validate() error {
	if len(d.Fields) == 0 {
		return newParseError(KindUnknown, 0, 0, "fixed-width dialect has no fields")
	}
	for i, f := range d.Fields {
		if f.Width <= 0 {
			return newParseError(KindUnknown, 0, 0, "field "+f.Name+" has non-positive width")
		}
		if f.Offset < 0 {
			return newParseError(KindUnknown, 0, 0, "field "+f.Name+" has negative offset")
		}
		for j := 0; j < i; j++ {
			other := d.Fields[j]
			if f.Offset < other.Offset+other.Width && other.Offset < f.Offset+f.Width {
				return newParseError(KindUnknown, 0, 0, "fields "+f.Name+" and "+other.Name+" overlap")
			}
		}
	}
	return nil
}

// FixedWidthScanner tokenizes one row at a time from a fixed layout,
// analogous to Scanner but driven by offsets instead of delimiters.
type FixedWidthScanner struct {
	Dialect FixedWidthDialect
}

// NewFixedWidthScanner returns a scanner bound to the given layout.
func NewFixedWidthScanner(d FixedWidthDialect) *FixedWidthScanner {
	return &FixedWidthScanner{Dialect: d}
}

// ScanRow extracts one row's field bytes from window, which must hold at
// least one full record line, and reports the row's field ColumnViews. Only
// the first line, up to its LF or CR terminator, is sliced.
// A row shorter than the configured record width is a KindRowTooShort error
// in strict mode; in lenient mode short rows yield empty trailing fields.
func (s *FixedWidthScanner) ScanRow(window []byte, row int) ([]ColumnView, error) {
	for i, c := range window {
		if c == '\n' || c == '\r' {
			window = window[:i]
			break
		}
	}
	width := s.Dialect.RecordWidth()
	if len(window) < width && s.Dialect.Strict {
		return nil, newParseError(KindRowTooShort, row, 0, "row shorter than configured record width")
	}

	views := make([]ColumnView, len(s.Dialect.Fields))
	for i, f := range s.Dialect.Fields {
		start := f.Offset
		end := f.Offset + f.Width
		if start >= len(window) {
			views[i] = ColumnView{window: window, offset: len(window), length: 0}
			continue
		}
		if end > len(window) {
			end = len(window)
		}
		views[i] = ColumnView{window: window, offset: start, length: end - start}
	}
	return views, nil
}

// TrimField removes the dialect's pad byte (space if PadByte is zero) from
// f's raw text, stripping only from the side f.Alignment declares padding
// accumulates on, when TrimFields is enabled.
func (d FixedWidthDialect) TrimField(f FixedWidthField, s string) string {
	if !d.TrimFields {
		return s
	}
	pad := d.PadByte
	if pad == 0 {
		pad = ' '
	}
	padStr := string(pad)
	if f.Alignment == AlignRight {
		return strings.TrimLeft(s, padStr)
	}
	return strings.TrimRight(s, padStr)
}
