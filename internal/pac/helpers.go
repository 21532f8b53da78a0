package pac

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"
)

var weekdays = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// install registers the PAC helper functions on vm
func (r *Resolver) install(ctx context.Context, vm *goja.Runtime) error {
	dnsResolve := func(host string) string {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
		addrs, err := r.lookup(ctx, host)
		if err != nil {
			return ""
		}
		for _, a := range addrs {
			if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
				return ip.String()
			}
		}
		if len(addrs) > 0 {
			return addrs[0]
		}
		return ""
	}

	helpers := map[string]any{
		"isPlainHostName": func(host string) bool {
			return !strings.Contains(host, ".")
		},
		"dnsDomainIs": func(host, domain string) bool {
			return strings.HasSuffix(strings.ToLower(host), strings.ToLower(domain))
		},
		"localHostOrDomainIs": func(host, hostdom string) bool {
			host, hostdom = strings.ToLower(host), strings.ToLower(hostdom)
			if host == hostdom {
				return true
			}
			return !strings.Contains(host, ".") && strings.HasPrefix(hostdom, host+".")
		},
		"isResolvable": func(host string) bool {
			return dnsResolve(host) != ""
		},
		"isInNet": func(host, pattern, mask string) bool {
			return inNet(dnsResolve(host), pattern, mask)
		},
		"dnsResolve": func(call goja.FunctionCall) goja.Value {
			if ip := dnsResolve(call.Argument(0).String()); ip != "" {
				return vm.ToValue(ip)
			}
			return goja.Null()
		},
		"myIpAddress": func() string {
			return r.localIP()
		},
		"dnsDomainLevels": func(host string) int {
			return strings.Count(host, ".")
		},
		"shExpMatch": func(str, shexp string) bool {
			return shellMatch(str, shexp)
		},
		"weekdayRange": func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(r.weekdayRange(call))
		},
		"alert": func(msg string) {
			r.log.Sugar().Infof("proxy auto-config alert: %s", msg)
		},
	}
	for name, fn := range helpers {
		if err := vm.Set(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func inNet(addr, pattern, mask string) bool {
	ip := net.ParseIP(addr).To4()
	base := net.ParseIP(pattern).To4()
	m := net.ParseIP(mask).To4()
	if ip == nil || base == nil || m == nil {
		return false
	}
	return ip.Mask(net.IPMask(m)).Equal(base.Mask(net.IPMask(m)))
}

// shellMatch matches a shell expression where * and ? cross any character,
// including '/'
func shellMatch(str, shexp string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, c := range shexp {
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(str)
}

// weekdayRange implements weekdayRange(wd1 [, wd2] [, "GMT"])
func (r *Resolver) weekdayRange(call goja.FunctionCall) bool {
	args := make([]string, 0, 3)
	for _, a := range call.Arguments {
		args = append(args, strings.ToUpper(a.String()))
	}

	now := r.now()
	if n := len(args); n > 0 && args[n-1] == "GMT" {
		now = now.UTC()
		args = args[:n-1]
	}
	if len(args) == 0 {
		return false
	}

	from, ok := weekdays[args[0]]
	if !ok {
		return false
	}
	to := from
	if len(args) > 1 {
		if to, ok = weekdays[args[1]]; !ok {
			return false
		}
	}

	today := now.Weekday()
	if from <= to {
		return today >= from && today <= to
	}
	return today >= from || today <= to
}

// localAddress returns the first non-loopback IPv4 address of this host
func localAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if v4 := ipnet.IP.To4(); v4 != nil {
				return v4.String()
			}
		}
	}
	return "127.0.0.1"
}
