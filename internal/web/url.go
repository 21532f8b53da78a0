package web

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// BlankURL is the URL of an empty page
const BlankURL = "about:blank"

var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// ParseURL parses and normalizes an absolute URL
func ParseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, malformed(raw, "empty URL", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, malformed(raw, "unparsable URL", err)
	}
	if u.Scheme == "" {
		return nil, malformed(raw, "URL is not absolute", nil)
	}
	return Normalize(u)
}

// ResolveURL resolves ref against base and normalizes the result
func ResolveURL(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, malformed(ref, "unparsable reference", err)
	}
	if base == nil {
		if r.Scheme == "" {
			return nil, malformed(ref, "URL is not absolute", nil)
		}
		return Normalize(r)
	}
	return Normalize(base.ResolveReference(r))
}

// Normalize returns a copy of u with an ASCII (IDN-encoded) lowercase host,
// dot segments removed and an empty hierarchical path replaced by "/".
func Normalize(u *url.URL) (*url.URL, error) {
	out := *u
	if u.User != nil {
		user := *u.User
		out.User = &user
	}
	out.Scheme = strings.ToLower(out.Scheme)
	if out.Opaque != "" {
		return &out, nil
	}

	if out.Host != "" {
		if strings.HasSuffix(out.Host, ":") {
			return nil, malformed(u.String(), "empty port", nil)
		}
		hostname := out.Hostname()
		if strings.Contains(hostname, ":") {
			out.Host = strings.ToLower(out.Host)
		} else {
			host, err := asciiHost(hostname)
			if err != nil {
				return nil, malformed(u.String(), "invalid host", err)
			}
			if port := out.Port(); port != "" {
				host += ":" + port
			}
			out.Host = host
		}
	}

	if out.Path != "" {
		out.Path = removeDotSegments(out.Path)
		out.RawPath = ""
	}
	if out.Path == "" && out.Host != "" && (out.Scheme == "http" || out.Scheme == "https") {
		out.Path = "/"
	}
	return &out, nil
}

func asciiHost(host string) (string, error) {
	for i := 0; i < len(host); i++ {
		if host[i] >= 0x80 {
			return hostProfile.ToASCII(host)
		}
	}
	return strings.ToLower(host), nil
}

// removeDotSegments implements RFC 3986 section 5.2.4
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	var out []string
	in := path
	for in != "" {
		switch {
		case strings.HasPrefix(in, "../"):
			in = in[3:]
		case strings.HasPrefix(in, "./"):
			in = in[2:]
		case strings.HasPrefix(in, "/./"):
			in = in[2:]
		case in == "/.":
			in = "/"
		case strings.HasPrefix(in, "/../"):
			in = in[3:]
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "/..":
			in = "/"
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case in == "." || in == "..":
			in = ""
		default:
			start := 0
			if in[0] == '/' {
				start = 1
			}
			end := strings.IndexByte(in[start:], '/')
			if end < 0 {
				end = len(in)
			} else {
				end += start
			}
			out = append(out, in[:end])
			in = in[end:]
		}
	}
	return strings.Join(out, "")
}

// WithoutFragment returns the string form of u with any fragment removed
func WithoutFragment(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

// SameIgnoringFragment reports whether a and b differ at most in their fragment
func SameIgnoringFragment(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return WithoutFragment(a) == WithoutFragment(b)
}

// IsBlank reports whether u is the empty page
func IsBlank(u *url.URL) bool {
	if u == nil {
		return true
	}
	return strings.EqualFold(u.Scheme, "about") && strings.EqualFold(u.Opaque, "blank")
}

// DefaultPort returns the explicit port of u, or the scheme default
func DefaultPort(u *url.URL) int {
	if p := u.Port(); p != "" {
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return -1
			}
			n = n*10 + int(c-'0')
		}
		return n
	}
	switch u.Scheme {
	case "http", "ws":
		return 80
	case "https", "wss":
		return 443
	case "ftp":
		return 21
	}
	return -1
}

// Origin returns scheme://host[:port] with the default port elided
func Origin(u *url.URL) string {
	if u == nil || u.Host == "" {
		return "null"
	}
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if p := u.Port(); p != "" && !isDefaultPort(u.Scheme, p) {
		host += ":" + p
	}
	return strings.ToLower(u.Scheme) + "://" + host
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}
