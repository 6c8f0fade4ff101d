package tabularcore

import (
	"strconv"
	"strings"
	"time"
)

// ColumnView is a zero-copy view of one field's raw (still-quoted) bytes
// inside a borrowed input window. Decoding — unquoting,
// unescaping, numeric/time conversion — happens lazily when a decoder
// method is called, never at scan time.
type ColumnView struct {
	window []byte
	offset int
	length int
	quote  byte
}

// Raw returns the field's bytes exactly as they appeared in the input,
// including surrounding quotes if the field was quoted. The returned slice
// aliases the caller's input window and must not be retained past the
// window's lifetime.
func (c ColumnView) Raw() []byte {
	return c.window[c.offset : c.offset+c.length]
}

// IsEmpty reports whether the field has zero raw bytes (an empty,
// unquoted field; a quoted empty field `""` is not empty by this measure).
func (c ColumnView) IsEmpty() bool {
	return c.length == 0
}

// Offset returns the field's byte offset within its input window, for
// position reporting.
func (c ColumnView) Offset() int {
	return c.offset
}

// Text decodes the field to a string: quoted fields are unwrapped and
// doubled quotes collapsed to one; unquoted fields are returned verbatim.
func (c ColumnView) Text() string {
	raw := c.Raw()
	inner, ok := quotedBody(raw, c.quote)
	if !ok {
		return string(raw)
	}
	return unquoteField(inner, c.quote)
}

func hasByte(data []byte, b byte) bool {
	for _, c := range data {
		if c == b {
			return true
		}
	}
	return false
}

// Int decodes the field as a base-10 signed integer.
func (c ColumnView) Int() (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
	if err != nil {
		return 0, newParseError(KindInvalidInteger, 0, 0, err.Error())
	}
	return v, nil
}

// Uint decodes the field as a base-10 unsigned integer.
func (c ColumnView) Uint() (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(c.Text()), 10, 64)
	if err != nil {
		return 0, newParseError(KindInvalidInteger, 0, 0, err.Error())
	}
	return v, nil
}

// Float decodes the field as a 64-bit float.
func (c ColumnView) Float() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Text()), 64)
	if err != nil {
		return 0, newParseError(KindInvalidFloat, 0, 0, err.Error())
	}
	return v, nil
}

// Bool decodes the field as a boolean, accepting strconv.ParseBool's set
// plus the case-insensitive words "yes"/"no".
func (c ColumnView) Bool() (bool, error) {
	s := strings.TrimSpace(c.Text())
	switch strings.ToLower(s) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, newParseError(KindInvalidBoolean, 0, 0, err.Error())
	}
	return v, nil
}

// Time decodes the field with the given time.Parse layout.
func (c ColumnView) Time(layout string) (time.Time, error) {
	v, err := time.Parse(layout, strings.TrimSpace(c.Text()))
	if err != nil {
		return time.Time{}, newParseError(KindInvalidDateTime, 0, 0, err.Error())
	}
	return v, nil
}

// iso8601Layouts are tried in order by TimeISO8601, covering the subset of
// ISO-8601 this module accepts without an explicit layout: offset or Zulu
// datetime, naive datetime, and date-only.
var iso8601Layouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// TimeISO8601 decodes the field as an ISO-8601 timestamp, trying each of
// iso8601Layouts in turn and reporting KindInvalidDateTime if none match.
func (c ColumnView) TimeISO8601() (time.Time, error) {
	s := strings.TrimSpace(c.Text())
	var lastErr error
	for _, layout := range iso8601Layouts {
		v, err := time.Parse(layout, s)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return time.Time{}, newParseError(KindInvalidDateTime, 0, 0, lastErr.Error())
}

// RowView indexes the column spans one Scanner.ScanRow call produced,
// giving positional and (via a HeaderIndex) named access.
type RowView struct {
	window  []byte
	starts  []int
	lengths []int
	count   int
	quote   byte
}

// NewRowView wraps a scan result for column access. starts/lengths/count
// should be exactly what Scanner.ScanRow populated; window must be the same
// slice passed to ScanRow.
func NewRowView(window []byte, starts, lengths []int, count int, d Dialect) RowView {
	return RowView{window: window, starts: starts, lengths: lengths, count: count, quote: d.Quote}
}

// Len returns the number of columns in the row.
func (r RowView) Len() int {
	return r.count
}

// Column returns the i'th column view (0-based). Panics if i is out of
// range, matching slice-indexing semantics for a zero-copy accessor.
func (r RowView) Column(i int) ColumnView {
	return ColumnView{window: r.window, offset: r.starts[i], length: r.lengths[i], quote: r.quote}
}

// TryColumn looks up a column by header name via idx. ok is false if the
// name is unknown, or its ordinal is not below the row's column count.
func (r RowView) TryColumn(name string, idx *HeaderIndex) (ColumnView, bool) {
	ord, found := idx.Lookup(name)
	if !found || ord >= r.count {
		return ColumnView{}, false
	}
	return r.Column(ord), true
}
