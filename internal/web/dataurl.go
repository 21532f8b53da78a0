package web

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// DataURL is a decoded data: URL
type DataURL struct {
	MediaType string
	Charset   string
	Data      []byte
}

// ContentType returns the media type with its charset parameter
func (d DataURL) ContentType() string {
	if d.Charset == "" {
		return d.MediaType
	}
	return d.MediaType + ";charset=" + d.Charset
}

// DecodeDataURL decodes data:[<mediatype>][;base64],<data>
func DecodeDataURL(raw string) (*DataURL, error) {
	rest, ok := cutPrefixFold(raw, "data:")
	if !ok {
		return nil, malformed(raw, "not a data URL", nil)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, malformed(raw, "data URL without comma", nil)
	}

	d := &DataURL{MediaType: "text/plain", Charset: "US-ASCII"}
	isBase64 := false
	declaredType := false
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0 && part != "":
			d.MediaType = strings.ToLower(part)
			d.Charset = ""
			declaredType = true
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		case len(part) > 8 && strings.EqualFold(part[:8], "charset="):
			d.Charset = part[8:]
		}
	}
	if declaredType && d.Charset == "" && strings.HasPrefix(d.MediaType, "text/") {
		d.Charset = "US-ASCII"
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		unescaped = payload
	}
	if !isBase64 {
		d.Data = []byte(unescaped)
		return d, nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, unescaped)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		if err != nil {
			return nil, malformed(raw, "invalid base64 payload", err)
		}
	}
	d.Data = data
	return d, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
