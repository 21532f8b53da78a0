package page

import (
	"strings"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// HTMLPage is a parsed HTML document
type HTMLPage struct {
	*Page
	doc     *goquery.Document
	title   string
	charset string
	frames  []window.FrameDecl
	base    string
}

func parseHTML(p *Page, text, cs string) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	hp := &HTMLPage{
		Page:    p,
		doc:     doc,
		title:   strings.TrimSpace(doc.Find("title").First().Text()),
		charset: cs,
	}

	base := hp.url
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if resolved, err := web.ResolveURL(hp.url, href); err == nil {
			base = resolved
		}
	}
	hp.base = base.String()

	doc.Find("frame, iframe").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = web.BlankURL
		}
		u, err := web.ResolveURL(base, src)
		if err != nil {
			return
		}
		hp.frames = append(hp.frames, window.FrameDecl{Name: s.AttrOr("name", ""), URL: u})
	})
	return hp, nil
}

// Title returns the trimmed text of the first <title>
func (p *HTMLPage) Title() string { return p.title }

func (p *HTMLPage) Charset() string { return p.charset }

// BaseURL returns the URL relative links resolve against
func (p *HTMLPage) BaseURL() string { return p.base }

// Document returns the parsed document
func (p *HTMLPage) Document() *goquery.Document { return p.doc }

// Frames returns the frame and iframe declarations in document order
func (p *HTMLPage) Frames() []window.FrameDecl { return p.frames }

// Text returns the text content of the body
func (p *HTMLPage) Text() string {
	return strings.TrimSpace(p.doc.Find("body").Text())
}

// XPath returns the nodes matching expr
func (p *HTMLPage) XPath(expr string) ([]*html.Node, error) {
	if len(p.doc.Nodes) == 0 {
		return nil, nil
	}
	return htmlquery.QueryAll(p.doc.Nodes[0], expr)
}

// XPathText returns the inner text of each node matching expr
func (p *HTMLPage) XPathText(expr string) ([]string, error) {
	nodes, err := p.XPath(expr)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = htmlquery.InnerText(n)
	}
	return out, nil
}
