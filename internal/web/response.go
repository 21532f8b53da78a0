package web

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Response is a normalized HTTP response
type Response struct {
	StatusCode    int
	StatusMessage string
	Header        Header
	Content       Content
	Request       *Request
	LoadDuration  time.Duration
}

// NewResponse builds a response; a nil content is treated as empty
func NewResponse(req *Request, status int, message string, header Header, content Content) *Response {
	if message == "" {
		message = http.StatusText(status)
	}
	if content == nil {
		content = EmptyContent()
	}
	return &Response{
		StatusCode:    status,
		StatusMessage: message,
		Header:        header,
		Content:       content,
		Request:       req,
	}
}

// StringResponse builds a 200 response with a text body
func StringResponse(req *Request, contentType, body string) *Response {
	return NewResponse(req, http.StatusOK, "", NewHeader("Content-Type", contentType), BytesContent([]byte(body)))
}

// NoHTTPResponse is the sentinel returned when the server closed the
// connection without answering
func NoHTTPResponse(req *Request) *Response {
	return NewResponse(req, 0, "No HTTP Response", Header{}, EmptyContent())
}

// IsNoHTTPResponse reports whether r is the no-answer sentinel
func (r *Response) IsNoHTTPResponse() bool {
	return r.StatusCode == 0
}

// IsSuccess reports a 2xx status
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect reports a 3xx status
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// ContentType returns the lowercased media type without parameters
func (r *Response) ContentType() string {
	mediaType, _ := parseContentType(r.Header.Get("Content-Type"))
	return mediaType
}

// ContentCharset returns the charset parameter of Content-Type, lowercased
func (r *Response) ContentCharset() string {
	_, cs := parseContentType(r.Header.Get("Content-Type"))
	return cs
}

// ContentBytes returns the whole body
func (r *Response) ContentBytes() ([]byte, error) {
	return ReadAll(r.Content)
}

// ContentAsString decodes the body using the declared charset, falling back
// to UTF-8
func (r *Response) ContentAsString() (string, error) {
	data, err := r.ContentBytes()
	if err != nil {
		return "", err
	}
	return DecodeText(data, r.ContentCharset())
}

// URL returns the URL of the originating request
func (r *Response) URL() string {
	if r.Request == nil {
		return ""
	}
	return r.Request.URLString()
}

// Release frees the body storage
func (r *Response) Release() error {
	if r == nil || r.Content == nil {
		return nil
	}
	return r.Content.Release()
}

func (r *Response) String() string {
	return fmt.Sprintf("%d %s (%s)", r.StatusCode, r.StatusMessage, r.URL())
}

// DecodeText converts data from the named charset to UTF-8
func DecodeText(data []byte, label string) (string, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return string(data), nil
	}
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return string(data), nil
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func parseContentType(value string) (mediaType, cs string) {
	if value == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(value)
	if err != nil {
		mt, _, _ = strings.Cut(value, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return strings.ToLower(mt), strings.ToLower(params["charset"])
}
