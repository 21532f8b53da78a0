package page

import (
	"encoding/xml"
	"io"
	"strings"
)

// XMLPage is an XML or XHTML document
type XMLPage struct {
	*Page
	text    string
	charset string
	root    xml.Name
}

func parseXML(p *Page, text, cs string) *XMLPage {
	xp := &XMLPage{Page: p, text: text, charset: cs}

	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = false
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if start, ok := tok.(xml.StartElement); ok {
			xp.root = start.Name
			break
		}
	}
	return xp
}

// RootName returns the local name of the document element, empty when the
// document could not be parsed
func (p *XMLPage) RootName() string { return p.root.Local }

// RootNamespace returns the namespace of the document element
func (p *XMLPage) RootNamespace() string { return p.root.Space }

func (p *XMLPage) Content() string { return p.text }
func (p *XMLPage) Charset() string { return p.charset }
