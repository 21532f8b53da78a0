package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/credentials"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/profile"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.TempDir = t.TempDir()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestTransport(t *testing.T, opts ...Option) *Transport {
	tr := New(testConfig(t), nil, nil, opts...)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func request(t *testing.T, rawURL, method string) *web.Request {
	t.Helper()
	req, err := web.NewRequest(rawURL, method)
	require.NoError(t, err)
	return req
}

func TestExecuteGet(t *testing.T) {
	var gotUA, gotAcceptEncoding, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		gotAcceptEncoding = r.Header.Get("Accept-Encoding")
		gotCustom = r.Header.Get("X-Custom")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
		fmt.Fprint(w, "<html>hello</html>")
	}))
	defer srv.Close()

	tr := newTestTransport(t)
	req := request(t, srv.URL+"/page", http.MethodGet)
	req.SetHeader("X-Custom", "yes")

	resp, err := tr.Execute(context.Background(), req, profile.Default())
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusMessage)
	assert.Equal(t, "text/html", resp.ContentType())
	assert.Equal(t, []string{"a", "b"}, resp.Header.Values("x-multi"))
	body, err := resp.ContentAsString()
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)
	assert.Same(t, req, resp.Request)

	assert.Equal(t, profile.Default().UserAgent, gotUA)
	assert.Empty(t, gotAcceptEncoding)
	assert.Equal(t, "yes", gotCustom)
}

func TestExecuteDoesNotFollowRedirects(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/elsewhere", resp.Header.Get("Location"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestErrorStatusIsAResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestContentDecoding(t *testing.T) {
	const text = "decoded body text, repeated. decoded body text, repeated."

	encoders := map[string]func(io.Writer) io.WriteCloser{
		"gzip": func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"deflate": func(w io.Writer) io.WriteCloser {
			return zlib.NewWriter(w)
		},
		"br": func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
		"zstd": func(w io.Writer) io.WriteCloser {
			enc, _ := zstd.NewWriter(w)
			return enc
		},
	}

	for coding, newWriter := range encoders {
		t.Run(coding, func(t *testing.T) {
			var buf bytes.Buffer
			zw := newWriter(&buf)
			_, err := zw.Write([]byte(text))
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", coding)
				w.Write(buf.Bytes())
			}))
			defer srv.Close()

			resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
			require.NoError(t, err)
			data, err := resp.ContentBytes()
			require.NoError(t, err)
			assert.Equal(t, text, string(data))
			assert.Equal(t, coding, resp.Header.Get("Content-Encoding"))
		})
	}
}

func TestRawDeflate(t *testing.T) {
	r, closer, err := decodeBody(bytes.NewReader(nil), "deflate")
	require.NoError(t, err)
	defer closer()
	data, _ := io.ReadAll(r)
	assert.Empty(t, data)

	r, closer, err = decodeBody(strings.NewReader("plain"), "identity")
	require.NoError(t, err)
	defer closer()
	data, _ = io.ReadAll(r)
	assert.Equal(t, "plain", string(data))
}

func TestLargeBodySpills(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.SpillThreshold = 1024
	tr := New(cfg, nil, nil)
	defer tr.Close()

	resp, err := tr.Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	defer resp.Release()

	assert.False(t, resp.Content.InMemory())
	assert.Equal(t, int64(4096), resp.Content.Len())
	data, err := resp.ContentBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestHeadHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Length", "100")
	}))
	defer srv.Close()

	resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodHead), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Content.Len())
}

func TestPostBodies(t *testing.T) {
	type seen struct {
		contentType string
		body        string
		form        map[string]string
		fileType    string
		fileName    string
	}

	var got seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = seen{contentType: r.Header.Get("Content-Type"), form: map[string]string{}}
		if strings.HasPrefix(got.contentType, "multipart/") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			for k, v := range r.MultipartForm.Value {
				got.form[k] = v[0]
			}
			if fh := r.MultipartForm.File["upload"]; len(fh) > 0 {
				got.fileType = fh[0].Header.Get("Content-Type")
				got.fileName = fh[0].Filename
			}
			return
		}
		data, _ := io.ReadAll(r.Body)
		got.body = string(data)
	}))
	defer srv.Close()

	tr := newTestTransport(t)
	ctx := context.Background()

	t.Run("url encoded", func(t *testing.T) {
		req := request(t, srv.URL, http.MethodPost)
		require.NoError(t, req.SetParameters([]web.Param{{Name: "q", Value: "a b&c"}, {Name: "n", Value: "1"}}))
		_, err := tr.Execute(ctx, req, nil)
		require.NoError(t, err)

		assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
		assert.Equal(t, "q=a+b%26c&n=1", got.body)
	})

	t.Run("url encoded with charset hint", func(t *testing.T) {
		req := request(t, srv.URL, http.MethodPost)
		req.SetCharset("iso-8859-1")
		req.SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=iso-8859-1")
		require.NoError(t, req.SetParameters([]web.Param{{Name: "name", Value: "café"}}))
		_, err := tr.Execute(ctx, req, nil)
		require.NoError(t, err)

		assert.Equal(t, "application/x-www-form-urlencoded; charset=iso-8859-1", got.contentType)
		assert.Equal(t, "name=caf%E9", got.body)
	})

	t.Run("multipart", func(t *testing.T) {
		req := request(t, srv.URL, http.MethodPost)
		req.SetEncoding(web.EncodingMultipart)
		require.NoError(t, req.SetParameters([]web.Param{
			{Name: "field", Value: "value"},
			{Name: "upload", File: &web.FileData{FileName: "pic.png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		}))
		_, err := tr.Execute(ctx, req, nil)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="))
		assert.Equal(t, "value", got.form["field"])
		assert.Equal(t, "image/png", got.fileType)
		assert.Equal(t, "pic.png", got.fileName)
	})

	t.Run("text plain", func(t *testing.T) {
		req := request(t, srv.URL, http.MethodPost)
		req.SetEncoding(web.EncodingTextPlain)
		require.NoError(t, req.SetParameters([]web.Param{{Name: "a", Value: "line1\r\nline2"}, {Name: "b", Value: "2"}}))
		_, err := tr.Execute(ctx, req, nil)
		require.NoError(t, err)

		assert.Equal(t, "text/plain; charset=utf-8", got.contentType)
		assert.Equal(t, "a=line1line2\r\nb=2\r\n", got.body)
	})

	t.Run("raw body", func(t *testing.T) {
		req := request(t, srv.URL, http.MethodPut)
		req.SetHeader("Content-Type", "application/json")
		require.NoError(t, req.SetBody(`{"a":1}`))
		_, err := tr.Execute(ctx, req, nil)
		require.NoError(t, err)

		assert.Equal(t, "application/json", got.contentType)
		assert.Equal(t, `{"a":1}`, got.body)
	})
}

func basicServer(t *testing.T, user, pass string, challenges *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			atomic.AddInt32(challenges, 1)
			w.Header().Set("WWW-Authenticate", `Basic realm="staff"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "welcome "+u)
	}))
}

func TestBasicChallengeAndPreemptiveAuth(t *testing.T) {
	var challenges int32
	srv := basicServer(t, "alice", "pw", &challenges)
	defer srv.Close()

	creds := credentials.NewStore()
	require.NoError(t, creds.Set(credentials.Scope{Realm: "staff"}, credentials.UsernamePassword{Username: "alice", Password: "pw"}))
	auth := credentials.NewAuthCache()
	tr := New(testConfig(t), creds, auth)
	defer tr.Close()

	resp, err := tr.Execute(context.Background(), request(t, srv.URL+"/a", http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&challenges))

	u, _ := url.Parse(srv.URL)
	ex, ok := auth.Get(hostPort(u))
	require.True(t, ok)
	assert.Equal(t, "staff", ex.Realm)

	resp, err = tr.Execute(context.Background(), request(t, srv.URL+"/b", http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&challenges), "second request should authenticate preemptively")
}

func TestChallengeWithoutCredentialsReturns401(t *testing.T) {
	var challenges int32
	srv := basicServer(t, "alice", "pw", &challenges)
	defer srv.Close()

	resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&challenges))
}

func TestURLCredentialsArePushed(t *testing.T) {
	var challenges int32
	srv := basicServer(t, "bob", "secret", &challenges)
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	creds := credentials.NewStore()
	auth := credentials.NewAuthCache()
	auth.Put(hostPort(u), credentials.Exchange{Scheme: "basic", Authorization: "Basic stale"})
	tr := New(testConfig(t), creds, auth)
	defer tr.Close()

	withUser := strings.Replace(srv.URL, "http://", "http://bob:secret@", 1)
	resp, err := tr.Execute(context.Background(), request(t, withUser, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	port := web.DefaultPort(u)
	assert.Equal(t, credentials.UsernamePassword{Username: "bob", Password: "secret"},
		creds.Get(credentials.HostScope(u.Hostname(), port)))
	ex, ok := auth.Get(hostPort(u))
	require.True(t, ok)
	assert.NotEqual(t, "Basic stale", ex.Authorization)
}

func TestExplicitCredentialsArePushed(t *testing.T) {
	var challenges int32
	srv := basicServer(t, "carol", "pw", &challenges)
	defer srv.Close()

	tr := newTestTransport(t)
	req := request(t, srv.URL, http.MethodGet)
	req.SetCredentials(credentials.UsernamePassword{Username: "carol", Password: "pw"})

	resp, err := tr.Execute(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, tr.Credentials().Len())
}

func TestNoHTTPResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	resp, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.True(t, resp.IsNoHTTPResponse())
	assert.Equal(t, "No HTTP Response", resp.StatusMessage)
}

func TestMalformedRequestsFailBeforeIO(t *testing.T) {
	tr := newTestTransport(t)
	for _, raw := range []string{"ftp://example.com/file", "about:blank", "file:///etc/hosts"} {
		_, err := tr.Execute(context.Background(), request(t, raw, http.MethodGet), nil)
		assert.ErrorIs(t, err, web.ErrMalformedRequest, raw)
	}
}

func TestTimeoutIsATransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	req := request(t, srv.URL, http.MethodGet)
	req.SetTimeout(50 * time.Millisecond)

	_, err := newTestTransport(t).Execute(context.Background(), req, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, web.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBreakerOpensForFailingHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	tr := newTestTransport(t, WithBreakerSettings(resilience.Settings{
		ReadyToTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 2 },
	}))

	for i := 0; i < 2; i++ {
		_, err := tr.Execute(context.Background(), request(t, addr, http.MethodGet), nil)
		require.ErrorIs(t, err, web.ErrTransport)
		assert.False(t, errors.Is(err, resilience.ErrCircuitOpen))
	}

	_, err := tr.Execute(context.Background(), request(t, addr, http.MethodGet), nil)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.ErrorIs(t, err, web.ErrTransport)
	assert.Len(t, tr.Breakers().Open(), 1)
}

func TestCookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	}))
	defer srv.Close()

	tr := newTestTransport(t)
	ctx := context.Background()

	_, err := tr.Execute(ctx, request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Empty(t, gotCookie)

	_, err = tr.Execute(ctx, request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, "session=abc", gotCookie)

	tr.ClearCookies()
	_, err = tr.Execute(ctx, request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Empty(t, gotCookie)
}

func TestCookiesDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Cookies = false
	tr := New(cfg, nil, nil)
	defer tr.Close()

	_, err := tr.Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	u, _ := url.Parse(srv.URL)
	assert.Empty(t, tr.Cookies(u))
}

// proxyServer answers every request itself and records the request URI,
// which is absolute-form when the client talks to it as a proxy
func proxyServer(seen *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = r.RequestURI
		fmt.Fprint(w, "via proxy")
	}))
}

func proxyOf(t *testing.T, srv *httptest.Server) *web.Proxy {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return &web.Proxy{Host: u.Hostname(), Port: web.DefaultPort(u), Scheme: "http"}
}

func TestExplicitProxy(t *testing.T) {
	var seen string
	proxy := proxyServer(&seen)
	defer proxy.Close()

	req := request(t, "http://origin.invalid/path", http.MethodGet)
	req.SetProxy(proxyOf(t, proxy))

	resp, err := newTestTransport(t).Execute(context.Background(), req, nil)
	require.NoError(t, err)
	body, _ := resp.ContentAsString()
	assert.Equal(t, "via proxy", body)
	assert.Equal(t, "http://origin.invalid/path", seen)
}

type staticResolver struct {
	proxy *web.Proxy
	calls int32
}

func (s *staticResolver) Resolve(context.Context, *url.URL) (*web.Proxy, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.proxy, nil
}

func TestConfiguredProxyAndResolver(t *testing.T) {
	var seen string
	proxy := proxyServer(&seen)
	defer proxy.Close()

	cfg := testConfig(t)
	cfg.Proxy = proxyOf(t, proxy)
	tr := New(cfg, nil, nil)
	defer tr.Close()

	_, err := tr.Execute(context.Background(), request(t, "http://configured.invalid/", http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://configured.invalid/", seen)

	// a resolver answering DIRECT overrides the configured proxy
	resolver := &staticResolver{}
	tr.SetProxyResolver(resolver)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "direct")
	}))
	defer origin.Close()

	resp, err := tr.Execute(context.Background(), request(t, origin.URL, http.MethodGet), nil)
	require.NoError(t, err)
	body, _ := resp.ContentAsString()
	assert.Equal(t, "direct", body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&resolver.calls))

	// an explicit direct route skips the resolver
	req := request(t, origin.URL, http.MethodGet)
	req.SetProxy(&web.Proxy{})
	_, err = tr.Execute(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&resolver.calls))
}

func TestBypassed(t *testing.T) {
	patterns := []string{"localhost", "*.internal.example", "10.0.*.*", " "}

	assert.True(t, Bypassed("LOCALHOST", patterns))
	assert.True(t, Bypassed("svc.internal.example", patterns))
	assert.True(t, Bypassed("10.0.3.4", patterns))
	assert.False(t, Bypassed("internal.example", patterns))
	assert.False(t, Bypassed("example.com", patterns))
	assert.False(t, Bypassed("example.com", nil))
}

func TestInsecureSSL(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer srv.Close()

	_, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, web.ErrTransport)
	assert.Equal(t, "tls", errorKind(err))

	cfg := testConfig(t)
	cfg.InsecureSSL = true
	tr := New(cfg, nil, nil)
	defer tr.Close()

	resp, err := tr.Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	body, _ := resp.ContentAsString()
	assert.Equal(t, "secure", body)
}

func TestInsecureSSLRelaxedRetry(t *testing.T) {
	t.Setenv("GODEBUG", "tls10server=1")
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "legacy")
	}))
	srv.TLS = &tls.Config{MinVersion: tls.VersionTLS10, MaxVersion: tls.VersionTLS11}
	srv.StartTLS()
	defer srv.Close()

	_, err := newTestTransport(t).Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.Error(t, err)
	assert.Equal(t, "tls", errorKind(err))

	cfg := testConfig(t)
	cfg.InsecureSSL = true
	tr := New(cfg, nil, nil)
	defer tr.Close()

	resp, err := tr.Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := resp.ContentAsString()
	assert.Equal(t, "legacy", body)
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.001
	tr := New(cfg, nil, nil)
	defer tr.Close()

	_, err := tr.Execute(context.Background(), request(t, srv.URL, http.MethodGet), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = tr.Execute(ctx, request(t, srv.URL, http.MethodGet), nil)
	assert.ErrorIs(t, err, web.ErrTransport)
}
