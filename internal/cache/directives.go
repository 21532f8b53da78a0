package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// directives is the parsed Cache-Control of a response
type directives struct {
	noStore   bool
	private   bool
	hasMaxAge bool
	maxAge    int64
	hasSMax   bool
	sMaxAge   int64
}

func parseDirectives(h web.Header) directives {
	var d directives
	for _, value := range h.Values("Cache-Control") {
		for _, part := range strings.Split(value, ",") {
			name, arg, _ := strings.Cut(strings.TrimSpace(part), "=")
			arg = strings.Trim(strings.TrimSpace(arg), `"`)
			switch strings.ToLower(strings.TrimSpace(name)) {
			case "no-store":
				d.noStore = true
			case "private":
				d.private = true
			case "max-age":
				d.hasMaxAge = true
				d.maxAge = parseSeconds(arg)
			case "s-maxage":
				d.hasSMax = true
				d.sMaxAge = parseSeconds(arg)
			}
		}
	}
	return d
}

// parseSeconds reads a delta-seconds argument; malformed values count as 0
func parseSeconds(arg string) int64 {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseDate reads an HTTP date or a plain integer of Unix seconds. ok is
// false when the header is missing or unparsable.
func parseDate(h web.Header, name string) (time.Time, bool) {
	value := strings.TrimSpace(h.Get(name))
	if value == "" {
		return time.Time{}, false
	}
	if t, err := http.ParseTime(value); err == nil {
		return t, true
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(n, 0), true
	}
	return time.Time{}, false
}
