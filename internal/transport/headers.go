package transport

import (
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// alwaysInjected headers are sent whenever the profile lists them, even
// when the caller set no value
var alwaysInjected = map[string]bool{
	"host":       true,
	"user-agent": true,
	"connection": true,
	"cookie":     true,
}

// OrderHeaders lays out the request headers in the profile's order.
// Caller-set values win over computed ones. A listed header is skipped
// when neither the caller nor computed supplies a value, except the
// always-injected ones. Caller headers the profile does not list follow,
// then any remaining computed headers.
func OrderHeaders(prof *profile.Profile, requested web.Header, computed web.Header) web.Header {
	var out web.Header
	used := make(map[string]bool)

	for _, name := range prof.HeaderOrder {
		key := strings.ToLower(name)
		if used[key] {
			continue
		}
		switch {
		case requested.Has(name):
			for _, v := range requested.Values(name) {
				out.Add(name, v)
			}
		case alwaysInjected[key] && computed.Get(name) != "":
			out.Add(name, computed.Get(name))
		default:
			continue
		}
		used[key] = true
	}

	for _, f := range requested.Fields() {
		if !used[strings.ToLower(f.Name)] {
			out.Add(f.Name, f.Value)
		}
	}
	for _, name := range requested.Names() {
		used[strings.ToLower(name)] = true
	}

	for _, f := range computed.Fields() {
		key := strings.ToLower(f.Name)
		if used[key] || key == "host" || key == "connection" {
			continue
		}
		out.Add(f.Name, f.Value)
		used[key] = true
	}
	return out
}
