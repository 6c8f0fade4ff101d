package tabularcore

import "strings"

// quotedBody reports whether raw is a quote-delimited field (length >= 2,
// first and last bytes equal quote) and, if so, returns the bytes between
// the outer quotes.
func quotedBody(raw []byte, quote byte) (inner []byte, ok bool) {
	if len(raw) < 2 || raw[0] != quote || raw[len(raw)-1] != quote {
		return nil, false
	}
	return raw[1 : len(raw)-1], true
}

// unquoteField decodes a quoted field's inner bytes, collapsing doubled
// quotes to one. Callers that already know the field is unquoted should
// skip this and convert the raw bytes directly.
func unquoteField(inner []byte, quote byte) string {
	if !hasByte(inner, quote) {
		return string(inner)
	}
	var b strings.Builder
	b.Grow(len(inner))
	i := 0
	for i < len(inner) {
		if inner[i] == quote && i+1 < len(inner) && inner[i+1] == quote {
			b.WriteByte(quote)
			i += 2
			continue
		}
		b.WriteByte(inner[i])
		i++
	}
	return b.String()
}
