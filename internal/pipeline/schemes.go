package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// LoadResponse fetches the final response for req without touching any
// window. javascript: URLs are rejected since they need a page to run in.
func (p *Pipeline) LoadResponse(ctx context.Context, req *web.Request) (*web.Response, error) {
	u := req.URL()
	switch strings.ToLower(u.Scheme) {
	case "about":
		return web.StringResponse(req, "text/html", ""), nil
	case "data":
		return p.loadData(req)
	case "file":
		return p.loadFile(req)
	case "http", "https":
		return p.network(ctx, req)
	case "javascript":
		return nil, &web.MalformedRequestError{Input: req.URLString(), Reason: "javascript URL needs a window"}
	default:
		return nil, &web.MalformedRequestError{Input: req.URLString(), Reason: "unsupported scheme " + u.Scheme}
	}
}

func (p *Pipeline) loadData(req *web.Request) (*web.Response, error) {
	d, err := web.DecodeDataURL(req.URLString())
	if err != nil {
		return nil, err
	}
	h := web.NewHeader(
		"Content-Type", d.ContentType(),
		"Content-Length", strconv.Itoa(len(d.Data)))
	return web.NewResponse(req, http.StatusOK, "", h, web.BytesContent(d.Data)), nil
}

func (p *Pipeline) loadFile(req *web.Request) (*web.Response, error) {
	if resp, ok := p.cache.Lookup(req); ok {
		return resp, nil
	}

	path := req.URL().Path
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			p.log.Debug("stat local file", zap.String("path", path), zap.Error(err))
		}
		body := "File: " + path
		h := web.NewHeader("Content-Type", "text/html")
		return web.NewResponse(req, http.StatusNotFound, "", h, web.BytesContent([]byte(body))), nil
	}

	content, err := web.FileContent(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(path); err == nil && mt != nil {
		contentType = mt.String()
	}
	h := web.NewHeader(
		"Content-Type", contentType,
		"Content-Length", strconv.FormatInt(info.Size(), 10),
		"Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	resp := web.NewResponse(req, http.StatusOK, "", h, content)
	p.cache.TryStore(req, resp, nil)
	return resp, nil
}

// loadJavaScript runs a javascript: URL against the current page of win.
// A defined result replaces the page with that value as HTML.
func (p *Pipeline) loadJavaScript(ctx context.Context, win *window.Window, req *web.Request, log *logging.Logger) (window.Page, error) {
	cur := win.Page()
	source := javascriptSource(req.URL())

	res, err := p.scripts.Evaluate(ctx, cur, req.URLString(), source)
	if err != nil {
		return nil, fmt.Errorf("evaluate javascript URL: %w", err)
	}
	if res.Undefined {
		log.Debug("javascript URL returned undefined")
		return cur, nil
	}

	pageURL := blankURL()
	if cur != nil {
		pageURL = cur.URL()
	}
	resp := web.StringResponse(web.NewRequestURL(pageURL, http.MethodGet), "text/html", res.Text)
	return p.materialize(ctx, win, resp, false, log)
}

// javascriptSource returns the script text of a javascript: URL
func javascriptSource(u *url.URL) string {
	raw := u.Opaque
	if raw == "" {
		raw = u.Path
	}
	if u.RawQuery != "" {
		raw += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		raw += "#" + u.EscapedFragment()
	}
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
