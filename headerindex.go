package tabularcore

import "strings"

// HeaderIndex maps header names to column ordinals. When a
// name repeats, the first occurrence wins (matching
// first-match header resolution); later duplicates are unreachable by name
// but still addressable positionally via RowView.Column.
type HeaderIndex struct {
	names         []string
	ordinals      map[string]int
	caseInsensitiveOrdinals map[string]int
	caseInsensitive bool
}

// NewHeaderIndex builds a HeaderIndex from an ordered list of header names,
// decoded from the header row's RowView by the caller beforehand.
func NewHeaderIndex(names []string, caseInsensitive bool) *HeaderIndex {
	idx := &HeaderIndex{
		names:           append([]string(nil), names...),
		ordinals:        make(map[string]int, len(names)),
		caseInsensitive: caseInsensitive,
	}
	if caseInsensitive {
		idx.caseInsensitiveOrdinals = make(map[string]int, len(names))
	}
	for i, name := range names {
		if _, exists := idx.ordinals[name]; !exists {
			idx.ordinals[name] = i
		}
		if caseInsensitive {
			folded := strings.ToLower(name)
			if _, exists := idx.caseInsensitiveOrdinals[folded]; !exists {
				idx.caseInsensitiveOrdinals[folded] = i
			}
		}
	}
	return idx
}

// Names returns the header names in column order.
func (h *HeaderIndex) Names() []string {
	return h.names
}

// Len returns the number of header columns.
func (h *HeaderIndex) Len() int {
	return len(h.names)
}

// Lookup returns the 0-based column ordinal for name, falling back to a
// case-insensitive match if the index was built with caseInsensitive set.
func (h *HeaderIndex) Lookup(name string) (int, bool) {
	if ord, ok := h.ordinals[name]; ok {
		return ord, true
	}
	if h.caseInsensitive {
		if ord, ok := h.caseInsensitiveOrdinals[strings.ToLower(name)]; ok {
			return ord, true
		}
	}
	return 0, false
}
