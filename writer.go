package tabularcore

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes records using delimiter-separated encoding.
//
// As returned by NewWriter, a Writer writes records terminated by "\r\n"
// (the RFC 4180 default) and uses ',' as the field delimiter and '"' as the
// quote character. Set UseCRLF to false to write bare "\n" instead. The
// exported fields can be changed to customize the details before the first
// call to Write or WriteAll.
//
// Writes of individual records are buffered; call Flush once done to
// guarantee all data has reached the underlying io.Writer, and Error to
// check whether a previous Write or Flush failed.
type Writer struct {
	Comma   byte // field delimiter (set to ',' by NewWriter)
	Quote   byte // quote character (set to '"' by NewWriter)
	UseCRLF bool // true to use "\r\n" as the line terminator instead of "\n"

	w   *bufio.Writer
	err error
}

// NewWriter returns a new Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Comma:   ',',
		Quote:   '"',
		UseCRLF: true,
		w:       bufio.NewWriter(w),
	}
}

// Write writes a single record to w along with any necessary quoting. A
// record is a slice of strings, each one field.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}

	for i, field := range record {
		if i > 0 {
			if w.err = w.w.WriteByte(w.Comma); w.err != nil {
				return w.err
			}
		}
		if w.err = w.writeField(field); w.err != nil {
			return w.err
		}
	}
	return w.writeLineEnding()
}

// WriteAll writes multiple records using Write and then calls Flush,
// returning any error from the Flush.
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer. Check Error
// afterward to see whether the flush succeeded.
func (w *Writer) Flush() error {
	w.err = w.w.Flush()
	return w.err
}

// Error reports any error that occurred during a previous Write or Flush.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) writeLineEnding() error {
	if w.UseCRLF {
		_, w.err = w.w.WriteString("\r\n")
	} else {
		w.err = w.w.WriteByte('\n')
	}
	return w.err
}

func (w *Writer) writeField(field string) error {
	if w.fieldNeedsQuotes(field) {
		return w.writeQuotedField(field)
	}
	_, err := w.w.WriteString(field)
	return err
}

// fieldNeedsQuotes reports whether field must be quoted: it contains the
// delimiter, the quote character, a line terminator, or has leading or
// trailing whitespace (encoding/csv's writer only checks leading
// whitespace; trailing is added here since an unquoted trailing space or
// tab is just as ambiguous on read-back).
func (w *Writer) fieldNeedsQuotes(field string) bool {
	if len(field) == 0 {
		return false
	}
	if isSpaceOrTab(field[0]) || isSpaceOrTab(field[len(field)-1]) {
		return true
	}
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == w.Comma || c == w.Quote || c == '\n' || c == '\r' {
			return true
		}
	}
	return false
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func (w *Writer) writeQuotedField(field string) error {
	if err := w.w.WriteByte(w.Quote); err != nil {
		return err
	}
	if !strings.ContainsRune(field, rune(w.Quote)) {
		if _, err := w.w.WriteString(field); err != nil {
			return err
		}
		return w.w.WriteByte(w.Quote)
	}

	lastWritten := 0
	for i := 0; i < len(field); i++ {
		if field[i] != w.Quote {
			continue
		}
		if _, err := w.w.WriteString(field[lastWritten : i+1]); err != nil {
			return err
		}
		if err := w.w.WriteByte(w.Quote); err != nil {
			return err
		}
		lastWritten = i + 1
	}
	if lastWritten < len(field) {
		if _, err := w.w.WriteString(field[lastWritten:]); err != nil {
			return err
		}
	}
	return w.w.WriteByte(w.Quote)
}
