package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseContentType(t *testing.T) {
	req := MustRequest("http://example.com/", http.MethodGet)
	resp := NewResponse(req, 200, "", NewHeader("Content-Type", "Text/HTML; Charset=ISO-8859-1"), BytesContent([]byte{'c', 'a', 'f', 0xe9}))

	assert.Equal(t, "OK", resp.StatusMessage)
	assert.Equal(t, "text/html", resp.ContentType())
	assert.Equal(t, "iso-8859-1", resp.ContentCharset())

	text, err := resp.ContentAsString()
	require.NoError(t, err)
	assert.Equal(t, "café", text)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "http://example.com/", resp.URL())
}

func TestNoHTTPResponse(t *testing.T) {
	req := MustRequest("http://example.com/", http.MethodGet)
	resp := NoHTTPResponse(req)

	assert.True(t, resp.IsNoHTTPResponse())
	assert.Equal(t, "No HTTP Response", resp.StatusMessage)
	assert.Equal(t, int64(0), resp.Content.Len())
	assert.Same(t, req, resp.Request)
}

func TestMalformedContentTypeStillYieldsMediaType(t *testing.T) {
	resp := NewResponse(nil, 200, "", NewHeader("Content-Type", "text/plain; =broken"), nil)
	assert.Equal(t, "text/plain", resp.ContentType())
	assert.True(t, resp.Content.InMemory())
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		in          string
		contentType string
		data        string
	}{
		{"data:,Hello%2C%20World", "text/plain;charset=US-ASCII", "Hello, World"},
		{"data:text/html;base64,PGI+aGk8L2I+", "text/html;charset=US-ASCII", "<b>hi</b>"},
		{"data:text/html;charset=utf-8,%3Cp%3E", "text/html;charset=utf-8", "<p>"},
		{"data:image/png;base64,iVBORw0KGgo=", "image/png", "\x89PNG\r\n\x1a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := DecodeDataURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, d.ContentType())
			assert.Equal(t, tt.data, string(d.Data))
		})
	}

	_, err := DecodeDataURL("data:text/plain")
	assert.ErrorIs(t, err, ErrMalformedRequest)
	_, err = DecodeDataURL("data:;base64,!!!")
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestErrorTaxonomy(t *testing.T) {
	err := &TransportError{Method: "GET", URL: "http://x/", Err: http.ErrHandlerTimeout}
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, http.ErrHandlerTimeout)

	var tooMany error = &TooManyRedirectsError{URL: "http://x/", Hops: 20}
	assert.ErrorIs(t, tooMany, ErrTooManyRedirects)
	assert.Contains(t, tooMany.Error(), "20")
}
