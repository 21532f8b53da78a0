package web

import (
	"net/http"
	"sort"
	"strings"
)

// Field is one header line
type Field struct {
	Name  string
	Value string
}

// Header is an ordered header list. Names match case-insensitively; the
// spelling and position of the first insertion are kept.
type Header struct {
	fields []Field
}

// NewHeader builds a header from name/value pairs
func NewHeader(pairs ...string) Header {
	var h Header
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Add(pairs[i], pairs[i+1])
	}
	return h
}

// FromHTTP copies an http.Header. net/http keeps no wire order, so names
// come out sorted.
func FromHTTP(src http.Header) Header {
	var h Header
	for _, name := range sortedKeys(src) {
		for _, v := range src[name] {
			h.Add(name, v)
		}
	}
	return h
}

// Get returns the first value for name
func (h Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns every value for name in order
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether name is present
func (h Header) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Add appends a value
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set replaces every value for name. The first occurrence keeps its
// position; a new name is appended.
func (h *Header) Set(name, value string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			h.fields[i].Value = value
			h.fields = append(h.fields[:i+1], removeName(h.fields[i+1:], name)...)
			return
		}
	}
	h.Add(name, value)
}

// Del removes every value for name
func (h *Header) Del(name string) {
	h.fields = removeName(h.fields, name)
}

// Len returns the number of header lines
func (h Header) Len() int { return len(h.fields) }

// Fields returns a copy of the header lines in order
func (h Header) Fields() []Field {
	return append([]Field(nil), h.fields...)
}

// Names returns the distinct names in first-seen order
func (h Header) Names() []string {
	var names []string
	seen := make(map[string]bool, len(h.fields))
	for _, f := range h.fields {
		key := strings.ToLower(f.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// Clone returns an independent copy
func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}

// HTTP converts to an http.Header
func (h Header) HTTP() http.Header {
	out := make(http.Header, len(h.fields))
	for _, f := range h.fields {
		out.Add(f.Name, f.Value)
	}
	return out
}

func removeName(fields []Field, name string) []Field {
	kept := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	return kept
}

func sortedKeys(h http.Header) []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
