package profile

import (
	"path"
	"sort"
	"strings"
)

// ResourceKind selects which default Accept header a request gets
type ResourceKind int

const (
	KindDocument ResourceKind = iota
	KindImage
	KindStylesheet
	KindScript
	KindOther
)

// String returns the kind name
func (k ResourceKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	case KindStylesheet:
		return "stylesheet"
	case KindScript:
		return "script"
	default:
		return "other"
	}
}

// AcceptHeaders holds the default Accept value per resource kind
type AcceptHeaders struct {
	Document   string `yaml:"document" toml:"document" json:"document"`
	Image      string `yaml:"image" toml:"image" json:"image"`
	Stylesheet string `yaml:"stylesheet" toml:"stylesheet" json:"stylesheet"`
	Script     string `yaml:"script" toml:"script" json:"script"`
	Other      string `yaml:"other" toml:"other" json:"other"`
}

// Profile is the static description of one simulated browser
type Profile struct {
	Name           string            `yaml:"name" toml:"name" json:"name"`
	UserAgent      string            `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	HeaderOrder    []string          `yaml:"header_order" toml:"header_order" json:"header_order"`
	Accept         AcceptHeaders     `yaml:"accept" toml:"accept" json:"accept"`
	AcceptLanguage string            `yaml:"accept_language" toml:"accept_language" json:"accept_language"`
	AcceptEncoding string            `yaml:"accept_encoding" toml:"accept_encoding" json:"accept_encoding"`
	UploadTypes    map[string]string `yaml:"upload_types" toml:"upload_types" json:"upload_types"`

	// FullQueryEncoding re-decodes raw Location bytes as Latin-1 before
	// following a redirect; legacy profiles use minimal encoding instead
	FullQueryEncoding bool `yaml:"full_query_encoding" toml:"full_query_encoding" json:"full_query_encoding"`
	// CarryFragmentOnRedirect keeps the original fragment when the
	// Location has none
	CarryFragmentOnRedirect bool `yaml:"carry_fragment_on_redirect" toml:"carry_fragment_on_redirect" json:"carry_fragment_on_redirect"`
}

// AcceptFor returns the default Accept header for kind
func (p *Profile) AcceptFor(kind ResourceKind) string {
	var v string
	switch kind {
	case KindDocument:
		v = p.Accept.Document
	case KindImage:
		v = p.Accept.Image
	case KindStylesheet:
		v = p.Accept.Stylesheet
	case KindScript:
		v = p.Accept.Script
	}
	if v == "" {
		v = p.Accept.Other
	}
	if v == "" {
		v = "*/*"
	}
	return v
}

// UploadMimeType returns the content type for an uploaded file name,
// application/octet-stream when the extension is unknown
func (p *Profile) UploadMimeType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext != "" {
		if mt, ok := p.UploadTypes[ext]; ok {
			return mt
		}
	}
	return "application/octet-stream"
}

// OrderIndex returns the position of header name in HeaderOrder, or -1
func (p *Profile) OrderIndex(name string) int {
	for i, h := range p.HeaderOrder {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy
func (p *Profile) Clone() *Profile {
	c := *p
	c.HeaderOrder = append([]string(nil), p.HeaderOrder...)
	c.UploadTypes = make(map[string]string, len(p.UploadTypes))
	for k, v := range p.UploadTypes {
		c.UploadTypes[k] = v
	}
	return &c
}

// Names lists the built-in profile names
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the built-in profile called name
func Lookup(name string) (*Profile, bool) {
	p, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Default returns the chrome profile
func Default() *Profile {
	p, _ := Lookup(Chrome)
	return p
}
