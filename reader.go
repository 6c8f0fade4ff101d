// Package tabularcore provides a high-throughput parser and writer for
// delimiter-separated and fixed-width tabular records, built around a
// streaming row/column scanner, zero-copy column views, and a reflection-
// light record binder.
package tabularcore

import (
	"errors"
	"io"
)

// DefaultMaxInputSize is the default maximum input size (2GB) Reader will
// buffer before returning ErrInputTooLarge.
const DefaultMaxInputSize = 2 * 1024 * 1024 * 1024

// Reader reads records from delimiter-separated input.
//
// As returned by NewReader, a Reader expects RFC 4180 input: comma-delimited,
// double-quoted, with strict quoting unless LazyQuotes is set. The exported
// fields may be changed to customize parsing before the first call to Read
// or ReadAll.
type Reader struct {
	// Comma is the field delimiter (set to ',' by NewReader).
	Comma byte

	// Comment, if not 0, marks a comment line: lines beginning with Comment
	// (without preceding whitespace) are skipped entirely.
	Comment byte

	// FieldsPerRecord controls field-count validation:
	//   - Positive: each record must have exactly this many fields.
	//   - Zero: set from the first record's field count; later records must match.
	//   - Negative: no check; records may have variable field counts.
	FieldsPerRecord int

	// LazyQuotes relaxes strict RFC 4180 quoting: a quote may appear in an
	// unquoted field, and a non-doubled quote may appear in a quoted field.
	LazyQuotes bool

	// TrimLeadingSpace causes leading whitespace in unquoted fields to be
	// ignored when decoding to text.
	TrimLeadingSpace bool

	// ReuseRecord controls whether Read may return a slice sharing the
	// backing array of the previous call's returned slice.
	ReuseRecord bool

	source io.Reader
	opts   ReaderOptions

	buf     []byte
	window  []byte
	offset  int64
	lineNum int

	fieldPositions []position
	lastRecord     []string

	starts  []int
	lengths []int

	initialized bool
}

// ReaderOptions holds extended Reader configuration beyond the core
// delimiter/quote behavior.
type ReaderOptions struct {
	// SkipBOM removes a leading UTF-8 BOM (EF BB BF) if present.
	SkipBOM bool
	// MaxInputSize caps buffered input; 0 uses DefaultMaxInputSize, -1 means
	// unlimited.
	MaxInputSize int64
}

type position struct {
	line   int
	column int
}

// NewReader returns a new Reader that reads from r using the default
// comma-delimited dialect.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Comma:           ',',
		FieldsPerRecord: 0,
		source:          r,
		starts:          make([]int, 64),
		lengths:         make([]int, 64),
	}
}

// NewReaderWithOptions creates a Reader with extended options.
func NewReaderWithOptions(r io.Reader, opts ReaderOptions) *Reader {
	reader := NewReader(r)
	reader.opts = opts
	return reader
}

func (r *Reader) dialect() Dialect {
	return Dialect{
		Delimiter: r.Comma,
		Quote:     '"',
		Strict:    !r.LazyQuotes,
	}
}

// Read reads one record from r.
//
// On a row the scanner rejects it returns nil and the error; on a field-count
// mismatch it returns the decoded record and the error. At end of input it
// returns nil, io.EOF.
func (r *Reader) Read() (record []string, err error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	return r.readNextRecord()
}

// ReadAll reads all remaining records. A successful call returns err == nil,
// never io.EOF.
func (r *Reader) ReadAll() (records [][]string, err error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	for {
		record, err := r.readNextRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// FieldPos returns the 1-indexed (line, column) of the field at index in
// the most recently returned record. Columns are counted in bytes.
func (r *Reader) FieldPos(field int) (line, column int) {
	if field < 0 || field >= len(r.fieldPositions) {
		panic("tabularcore: out of range index passed to FieldPos")
	}
	p := r.fieldPositions[field]
	return p.line, p.column
}

// InputOffset returns the byte offset into the input consumed so far.
func (r *Reader) InputOffset() int64 {
	return r.offset
}

func (r *Reader) ensureInitialized() error {
	if r.initialized {
		return nil
	}
	r.initialized = true
	return r.readInput()
}

func (r *Reader) readInput() error {
	maxSize := r.opts.MaxInputSize
	if maxSize == 0 {
		maxSize = DefaultMaxInputSize
	}

	var buf []byte
	var err error
	if maxSize > 0 {
		limited := io.LimitReader(r.source, maxSize+1)
		buf, err = io.ReadAll(limited)
		if err != nil {
			return err
		}
		if int64(len(buf)) > maxSize {
			return ErrInputTooLarge
		}
	} else {
		buf, err = io.ReadAll(r.source)
		if err != nil {
			return err
		}
	}

	if r.opts.SkipBOM && len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		buf = buf[3:]
	}

	r.buf = buf
	r.window = buf
	r.lineNum = 1
	return nil
}

// readNextRecord scans and decodes the next non-comment row.
func (r *Reader) readNextRecord() ([]string, error) {
	d := r.dialect()
	s := NewScanner(d)

	for {
		if len(r.window) == 0 {
			return nil, io.EOF
		}

		if r.Comment != 0 && r.window[0] == r.Comment {
			skip := NextRowBoundary(r.window, 0)
			r.window = r.window[skip:]
			r.offset += int64(skip)
			r.lineNum++
			continue
		}

		res, err := r.scanRowGrowing(s)
		if err != nil {
			r.window = r.window[:0]
			return nil, err
		}

		view := NewRowView(r.window, r.starts, r.lengths, res.ColumnCount, d)
		record := r.decodeRecord(view)
		r.recordFieldPositions(view)

		r.window = r.window[res.Consumed:]
		r.offset += int64(res.Consumed)
		r.lineNum++

		if err := r.validateFieldCount(record); err != nil {
			return record, err
		}
		return record, nil
	}
}

// scanRowGrowing calls ScanRow, doubling the starts/lengths scratch arrays
// and retrying whenever the failure is the scratch arrays running out of
// room rather than a real MaxColumns violation. The Reader's own dialect
// (see dialect) never sets MaxColumns, so any KindTooManyColumns failure it
// sees is always a capacity problem, not a configured cap. Growth stops
// once the scratch arrays could hold one column per input byte, which
// bounds the retry loop without needing an arbitrary constant.
func (r *Reader) scanRowGrowing(s *Scanner) (RowResult, error) {
	for {
		res, err := s.ScanRow(r.window, r.starts, r.lengths, r.lineNum)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrTooManyColumns) || len(r.starts) > len(r.window) {
			return RowResult{}, err
		}
		r.growScratch()
	}
}

func (r *Reader) growScratch() {
	newCap := len(r.starts) * 2
	if newCap == 0 {
		newCap = 64
	}
	r.starts = make([]int, newCap)
	r.lengths = make([]int, newCap)
}

func (r *Reader) decodeRecord(view RowView) []string {
	var record []string
	if r.ReuseRecord && cap(r.lastRecord) >= view.Len() {
		record = r.lastRecord[:view.Len()]
	} else {
		record = make([]string, view.Len())
	}
	for i := 0; i < view.Len(); i++ {
		col := view.Column(i)
		text := col.Text()
		if r.TrimLeadingSpace {
			if _, quoted := quotedBody(col.Raw(), view.quote); !quoted {
				text = trimLeadingSpace(text)
			}
		}
		record[i] = text
	}
	r.lastRecord = record
	return record
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

func (r *Reader) recordFieldPositions(view RowView) {
	if cap(r.fieldPositions) < view.Len() {
		r.fieldPositions = make([]position, view.Len())
	} else {
		r.fieldPositions = r.fieldPositions[:view.Len()]
	}
	for i := 0; i < view.Len(); i++ {
		r.fieldPositions[i] = position{line: r.lineNum, column: view.Column(i).Offset() + 1}
	}
}

func (r *Reader) validateFieldCount(record []string) error {
	if r.FieldsPerRecord < 0 {
		return nil
	}
	if r.FieldsPerRecord == 0 {
		r.FieldsPerRecord = len(record)
		return nil
	}
	if len(record) != r.FieldsPerRecord {
		return newParseError(KindRowTooShort, r.lineNum-1, 1, "wrong number of fields")
	}
	return nil
}
