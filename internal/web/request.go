package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/credentials"
)

// Encoding selects how form parameters are serialized
type Encoding int

const (
	EncodingURL Encoding = iota
	EncodingMultipart
	EncodingTextPlain
)

// String returns the content type for the encoding
func (e Encoding) String() string {
	switch e {
	case EncodingMultipart:
		return "multipart/form-data"
	case EncodingTextPlain:
		return "text/plain"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// Param is one form parameter. A parameter with File set is a file upload.
type Param struct {
	Name  string
	Value string
	File  *FileData
}

// FileData is the payload of a file upload parameter
type FileData struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Proxy describes a proxy endpoint
type Proxy struct {
	Host   string
	Port   int
	Scheme string
	SOCKS  bool
}

// Address returns host:port
func (p Proxy) Address() string {
	return p.Host + ":" + strconv.Itoa(p.Port)
}

// URL returns the proxy as a URL usable by http.Transport
func (p Proxy) URL() *url.URL {
	scheme := p.Scheme
	switch {
	case p.SOCKS:
		scheme = "socks5"
	case scheme == "":
		scheme = "http"
	}
	return &url.URL{Scheme: scheme, Host: p.Address()}
}

func (p Proxy) String() string {
	return p.URL().String()
}

// Request is one logical request: URL, method, headers and body
type Request struct {
	url         *url.URL
	method      string
	header      Header
	params      []Param
	body        string
	hasBody     bool
	encoding    Encoding
	credentials credentials.Credential
	proxy       *Proxy
	timeout     time.Duration
	charset     string
}

// NewRequest parses rawURL and creates a request for method
func NewRequest(rawURL, method string) (*Request, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewRequestURL(u, method), nil
}

// NewRequestURL creates a request for an already parsed URL
func NewRequestURL(u *url.URL, method string) *Request {
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		url:     u,
		method:  strings.ToUpper(method),
		charset: "utf-8",
	}
}

// MustRequest is NewRequest for URLs known to be valid; it panics otherwise
func MustRequest(rawURL, method string) *Request {
	r, err := NewRequest(rawURL, method)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Request) URL() *url.URL                       { return r.url }
func (r *Request) Method() string                      { return r.method }
func (r *Request) Header() Header                      { return r.header }
func (r *Request) Params() []Param                     { return append([]Param(nil), r.params...) }
func (r *Request) Encoding() Encoding                  { return r.encoding }
func (r *Request) Proxy() *Proxy                       { return r.proxy }
func (r *Request) Timeout() time.Duration              { return r.timeout }
func (r *Request) Charset() string                     { return r.charset }
func (r *Request) Credentials() credentials.Credential { return r.credentials }

// Body returns the raw body and whether one is set
func (r *Request) Body() (string, bool) { return r.body, r.hasBody }

// HasBody reports whether the request carries a raw body or parameters
func (r *Request) HasBody() bool { return r.hasBody || len(r.params) > 0 }

// URLString returns the request URL as a string
func (r *Request) URLString() string { return r.url.String() }

// SetURL replaces the target URL
func (r *Request) SetURL(u *url.URL) { r.url = u }

// SetMethod changes the method. A body is dropped when the new method
// cannot carry one.
func (r *Request) SetMethod(method string) {
	r.method = strings.ToUpper(method)
	if !bodyAllowed(r.method) {
		r.ClearBody()
	}
}

// SetBody sets a raw body
func (r *Request) SetBody(body string) error {
	if len(r.params) > 0 {
		return ErrBodyConflict
	}
	if !bodyAllowed(r.method) {
		return fmt.Errorf("%w: %s", ErrBodyNotAllowed, r.method)
	}
	r.body = body
	r.hasBody = true
	return nil
}

// SetParameters sets form parameters
func (r *Request) SetParameters(params []Param) error {
	if r.hasBody {
		return ErrBodyConflict
	}
	if len(params) > 0 && !bodyAllowed(r.method) {
		return fmt.Errorf("%w: %s", ErrBodyNotAllowed, r.method)
	}
	r.params = append([]Param(nil), params...)
	return nil
}

// ClearBody drops raw body and parameters
func (r *Request) ClearBody() {
	r.body = ""
	r.hasBody = false
	r.params = nil
}

// SetEncoding selects parameter serialization
func (r *Request) SetEncoding(e Encoding) { r.encoding = e }

// SetHeader sets one additional header
func (r *Request) SetHeader(name, value string) { r.header.Set(name, value) }

// RemoveHeader drops an additional header
func (r *Request) RemoveHeader(name string) { r.header.Del(name) }

// SetCredentials attaches explicit credentials
func (r *Request) SetCredentials(c credentials.Credential) { r.credentials = c }

// SetProxy routes this request through p; nil clears it
func (r *Request) SetProxy(p *Proxy) { r.proxy = p }

// SetTimeout overrides the client timeout; zero means use the default
func (r *Request) SetTimeout(d time.Duration) { r.timeout = d }

// SetCharset sets the charset used for parameters and redirect decoding
func (r *Request) SetCharset(charset string) {
	if charset == "" {
		charset = "utf-8"
	}
	r.charset = charset
}

// URLCredentials returns credentials embedded in the URL userinfo
func (r *Request) URLCredentials() (credentials.UsernamePassword, bool) {
	if r.url == nil || r.url.User == nil {
		return credentials.UsernamePassword{}, false
	}
	pw, _ := r.url.User.Password()
	return credentials.UsernamePassword{Username: r.url.User.Username(), Password: pw}, true
}

// Clone returns a deep copy
func (r *Request) Clone() *Request {
	c := *r
	if r.url != nil {
		u := *r.url
		if r.url.User != nil {
			user := *r.url.User
			u.User = &user
		}
		c.url = &u
	}
	c.header = r.header.Clone()
	c.params = append([]Param(nil), r.params...)
	if r.proxy != nil {
		p := *r.proxy
		c.proxy = &p
	}
	return &c
}

func (r *Request) String() string {
	return r.method + " " + r.url.String()
}

func bodyAllowed(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
