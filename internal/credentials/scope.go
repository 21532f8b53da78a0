package credentials

import (
	"fmt"
	"strings"
)

// AnyPort matches every port
const AnyPort = -1

// Scope identifies where a credential applies. Empty strings and
// non-positive ports are wildcards.
type Scope struct {
	Host   string
	Port   int
	Realm  string
	Scheme string
}

// Any returns the all-wildcard scope
func Any() Scope {
	return Scope{Port: AnyPort}
}

// HostScope returns a scope for host:port with realm and scheme wildcarded
func HostScope(host string, port int) Scope {
	return Scope{Host: host, Port: port}
}

// canonical lowercases host and scheme; realms are case-sensitive
func (s Scope) canonical() Scope {
	s.Host = strings.ToLower(s.Host)
	s.Scheme = strings.ToLower(s.Scheme)
	if s.Port <= 0 {
		s.Port = AnyPort
	}
	return s
}

// match scores how specifically the stored scope s covers query q.
// Host counts 8, port 4, realm 2, scheme 1. A non-wildcard stored field that
// differs from the query disqualifies the entry (-1).
func (s Scope) match(q Scope) int {
	score := 0
	if s.Host != "" {
		if s.Host != q.Host {
			return -1
		}
		score += 8
	}
	if s.Port != AnyPort {
		if s.Port != q.Port {
			return -1
		}
		score += 4
	}
	if s.Realm != "" {
		if s.Realm != q.Realm {
			return -1
		}
		score += 2
	}
	if s.Scheme != "" {
		if s.Scheme != q.Scheme {
			return -1
		}
		score++
	}
	return score
}

func (s Scope) String() string {
	host, port, realm, scheme := "<any host>", "<any port>", "<any realm>", "<any scheme>"
	if s.Host != "" {
		host = s.Host
	}
	if s.Port != AnyPort {
		port = fmt.Sprint(s.Port)
	}
	if s.Realm != "" {
		realm = "'" + s.Realm + "'"
	}
	if s.Scheme != "" {
		scheme = s.Scheme
	}
	return fmt.Sprintf("%s:%s %s %s", host, port, realm, scheme)
}
