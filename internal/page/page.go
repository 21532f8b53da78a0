package page

import (
	"net/url"
	"sync"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
)

// Retainer reports responses owned by someone else, typically the cache
type Retainer interface {
	Holds(resp *web.Response) bool
}

// Page is the common part of every page kind
type Page struct {
	mu          sync.Mutex
	url         *url.URL
	resp        *web.Response
	win         *window.Window
	kind        Kind
	contentType string
	retainer    Retainer
	released    bool
}

func newPage(resp *web.Response, win *window.Window, kind Kind, contentType string, retainer Retainer) *Page {
	u := &url.URL{Scheme: "about", Opaque: "blank"}
	if resp.Request != nil && resp.Request.URL() != nil {
		u = resp.Request.URL()
	}
	cp := *u
	return &Page{
		url:         &cp,
		resp:        resp,
		win:         win,
		kind:        kind,
		contentType: contentType,
		retainer:    retainer,
	}
}

// URL returns the page address, including the current fragment
func (p *Page) URL() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *p.url
	return &cp
}

// SetFragment updates the fragment after an in-page navigation
func (p *Page) SetFragment(fragment string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url.Fragment = fragment
	p.url.RawFragment = ""
}

func (p *Page) Response() *web.Response { return p.resp }
func (p *Page) Window() *window.Window  { return p.win }
func (p *Page) Kind() Kind              { return p.kind }
func (p *Page) ContentType() string     { return p.contentType }

// Release frees the response body unless a retainer still holds it.
// Repeated calls are no-ops.
func (p *Page) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil
	}
	p.released = true
	if p.retainer != nil && p.retainer.Holds(p.resp) {
		return nil
	}
	return p.resp.Release()
}

// TextPage holds a text/* or script/JSON body
type TextPage struct {
	*Page
	text    string
	charset string
}

func (p *TextPage) Content() string { return p.text }
func (p *TextPage) Charset() string { return p.charset }

// BinaryPage holds content that is not rendered
type BinaryPage struct {
	*Page
}

// Len returns the body size
func (p *BinaryPage) Len() int64 { return p.resp.Content.Len() }
