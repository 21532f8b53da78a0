package transport

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"golang.org/x/net/html/charset"
)

// encodeBody serializes the request body. It returns nil data for a
// request without one.
func encodeBody(req *web.Request, prof *profile.Profile) (data []byte, contentType string, err error) {
	if raw, ok := req.Body(); ok {
		return []byte(raw), req.Header().Get("Content-Type"), nil
	}
	params := req.Params()
	if len(params) == 0 {
		return nil, "", nil
	}

	switch req.Encoding() {
	case web.EncodingMultipart:
		return encodeMultipart(params, prof)
	case web.EncodingTextPlain:
		return encodeTextPlain(params, req.Charset())
	default:
		return encodeURLForm(params, req.Charset(), req.Header().Get("Content-Type"))
	}
}

// encodeURLForm writes name=value pairs in the request charset. The
// content type carries a charset only when the caller's hint asked for one.
func encodeURLForm(params []web.Param, cs, hint string) ([]byte, string, error) {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		name, err := encodeString(p.Name, cs)
		if err != nil {
			return nil, "", err
		}
		value, err := encodeString(p.Value, cs)
		if err != nil {
			return nil, "", err
		}
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	contentType := web.EncodingURL.String()
	if strings.Contains(strings.ToLower(hint), "charset") {
		contentType += "; charset=" + cs
	}
	return []byte(b.String()), contentType, nil
}

// encodeMultipart writes one part per parameter in order. File parts get
// their type from the upload table when the caller gave none.
func encodeMultipart(params []web.Param, prof *profile.Profile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range params {
		if p.File == nil {
			if err := w.WriteField(p.Name, p.Value); err != nil {
				return nil, "", err
			}
			continue
		}

		ct := p.File.ContentType
		if ct == "" {
			ct = prof.UploadMimeType(p.File.FileName)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(p.Name), escapeQuotes(p.File.FileName)))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.File.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// encodeTextPlain joins name=value lines with CRLF after stripping any
// embedded line breaks
func encodeTextPlain(params []web.Param, cs string) ([]byte, string, error) {
	strip := strings.NewReplacer("\r", "", "\n", "")
	lines := make([]string, len(params))
	for i, p := range params {
		lines[i] = strip.Replace(p.Name) + "=" + strip.Replace(p.Value)
	}
	text, err := encodeString(strings.Join(lines, "\r\n")+"\r\n", cs)
	if err != nil {
		return nil, "", err
	}
	return []byte(text), "text/plain; charset=" + cs, nil
}

func encodeString(s, label string) (string, error) {
	if label == "" || strings.EqualFold(label, "utf-8") {
		return s, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return s, nil
	}
	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("encode form data as %s: %w", label, err)
	}
	return out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
