package page

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the broad class of a page
type Kind int

const (
	KindHTML Kind = iota
	KindXML
	KindText
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindXML:
		return "xml"
	case KindText:
		return "text"
	default:
		return "binary"
	}
}

var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"content/unknown":          true,
	"unknown/unknown":          true,
	"application/unknown":      true,
	"*/*":                      true,
}

var textTypes = map[string]bool{
	"application/javascript":   true,
	"application/x-javascript": true,
	"application/ecmascript":   true,
	"application/json":         true,
}

// Classify returns the kind for contentType along with the media type it
// settled on. Missing or generic types are sniffed from data; empty
// content is treated as HTML.
func Classify(contentType string, data []byte) (Kind, string) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if genericTypes[ct] {
		if len(data) == 0 {
			return KindHTML, "text/html"
		}
		ct, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
		ct = strings.TrimSpace(ct)
	}

	switch {
	case ct == "text/html":
		return KindHTML, ct
	case ct == "text/xml", ct == "application/xml", strings.HasSuffix(ct, "+xml"):
		return KindXML, ct
	case strings.HasPrefix(ct, "text/"), textTypes[ct]:
		return KindText, ct
	default:
		return KindBinary, ct
	}
}
