package pac

import (
	"net"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// ParseResult turns a FindProxyForURL answer such as
// "PROXY a:8080; SOCKS b:1080; DIRECT" into a proxy. The first usable entry
// wins; nil means connect directly, which is also the answer for an empty
// or unusable result.
func ParseResult(result string) *web.Proxy {
	for _, entry := range strings.Split(result, ";") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}

		keyword := strings.ToUpper(fields[0])
		if keyword == "DIRECT" {
			return nil
		}
		if len(fields) < 2 {
			continue
		}

		var proxy *web.Proxy
		switch keyword {
		case "PROXY", "HTTP":
			proxy = endpoint(fields[1], "http", 80)
		case "HTTPS":
			proxy = endpoint(fields[1], "https", 443)
		case "SOCKS", "SOCKS4", "SOCKS5":
			proxy = endpoint(fields[1], "socks5", 1080)
			if proxy != nil {
				proxy.SOCKS = true
			}
		}
		if proxy != nil {
			return proxy
		}
	}
	return nil
}

func endpoint(hostport, scheme string, defaultPort int) *web.Proxy {
	host, port := hostport, defaultPort
	if h, p, err := net.SplitHostPort(hostport); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil
		}
		host, port = h, n
	}
	if host == "" {
		return nil
	}
	return &web.Proxy{Host: host, Port: port, Scheme: scheme}
}

func describe(p *web.Proxy) string {
	if p == nil {
		return "DIRECT"
	}
	return p.String()
}
