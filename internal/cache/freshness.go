package cache

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// slack is the margin an Expires or Last-Modified date must clear; it
// absorbs clock skew between client and server
const slack = 10 * time.Minute

// Cacheable reports whether resp looks static enough to keep. It is a
// store-time heuristic, separate from the access-time freshness check.
func Cacheable(resp *web.Response, now time.Time) bool {
	d := parseDirectives(resp.Header)
	if d.noStore {
		return false
	}

	lastModified, hasLastModified := parseDate(resp.Header, "Last-Modified")
	var expires time.Time
	hasExpires := false
	if !d.hasMaxAge && !d.hasSMax {
		expires, hasExpires = parseDate(resp.Header, "Expires")
	}

	if hasExpires {
		return expires.Sub(now) > slack
	}
	return hasLastModified && now.Sub(lastModified) > slack
}

// Fresh reports whether a response stored at createdAt may still be served
// at now
func Fresh(resp *web.Response, createdAt, now time.Time) bool {
	d := parseDirectives(resp.Header)

	var lifetime time.Duration
	switch {
	case !d.private && d.hasSMax:
		lifetime = time.Duration(d.sMaxAge) * time.Second
	case d.hasMaxAge:
		lifetime = time.Duration(d.maxAge) * time.Second
	case !resp.Header.Has("Expires"):
		return true
	default:
		if expires, ok := parseDate(resp.Header, "Expires"); ok {
			return expires.Sub(now) > slack
		}
	}
	return now.Sub(createdAt) < lifetime
}
