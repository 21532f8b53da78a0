package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/net/proxy"
)

// tlsPolicy selects the TLS settings of a client
type tlsPolicy int

const (
	tlsStrict tlsPolicy = iota
	tlsInsecure
	tlsRelaxed
)

// clientFor returns the resty client for a proxy route and TLS policy,
// creating it on first use. Each route owns its own connection pool.
func (t *Transport) clientFor(p *web.Proxy, policy tlsPolicy) (*resty.Client, error) {
	key := fmt.Sprintf("direct|%d", policy)
	if p != nil {
		key = fmt.Sprintf("%s|%d", p.String(), policy)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[key]; ok {
		return c, nil
	}

	tr, err := t.newHTTPTransport(p, policy)
	if err != nil {
		return nil, err
	}

	c := resty.NewWithClient(&http.Client{Transport: tr}).
		SetRetryCount(0).
		SetCookieJar(nil).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	c.SetLogger(restyLogger{t.log})

	t.clients[key] = c
	return c, nil
}

func (t *Transport) newHTTPTransport(p *web.Proxy, policy tlsPolicy) (*http.Transport, error) {
	tr := pooledTransport()
	tr.DisableCompression = true
	if t.cfg.MaxIdleConns > 0 {
		tr.MaxIdleConnsPerHost = t.cfg.MaxIdleConns
	}

	switch policy {
	case tlsInsecure:
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	case tlsRelaxed:
		tr.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
			CipherSuites:       allCipherSuites(),
		}
	}

	tr.Proxy = nil
	if p == nil {
		return tr, nil
	}

	if p.SOCKS {
		dialer, err := proxy.SOCKS5("tcp", p.Address(), nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks proxy %s: %w", p.Address(), err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return tr, nil
	}

	tr.Proxy = http.ProxyURL(p.URL())
	return tr, nil
}

// pooledTransport returns a fresh pooled transport that shares no state
// with http.DefaultTransport
func pooledTransport() *http.Transport {
	return cleanhttp.DefaultPooledTransport()
}

func allCipherSuites() []uint16 {
	var ids []uint16
	for _, s := range tls.CipherSuites() {
		ids = append(ids, s.ID)
	}
	for _, s := range tls.InsecureCipherSuites() {
		ids = append(ids, s.ID)
	}
	return ids
}
