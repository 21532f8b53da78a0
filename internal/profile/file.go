package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// override is the on-disk shape of a profile file. Unset fields keep the
// base profile's value.
type override struct {
	Base                    string            `yaml:"base" toml:"base"`
	Name                    string            `yaml:"name" toml:"name"`
	UserAgent               string            `yaml:"user_agent" toml:"user_agent"`
	HeaderOrder             []string          `yaml:"header_order" toml:"header_order"`
	Accept                  AcceptHeaders     `yaml:"accept" toml:"accept"`
	AcceptLanguage          string            `yaml:"accept_language" toml:"accept_language"`
	AcceptEncoding          string            `yaml:"accept_encoding" toml:"accept_encoding"`
	UploadTypes             map[string]string `yaml:"upload_types" toml:"upload_types"`
	FullQueryEncoding       *bool             `yaml:"full_query_encoding" toml:"full_query_encoding"`
	CarryFragmentOnRedirect *bool             `yaml:"carry_fragment_on_redirect" toml:"carry_fragment_on_redirect"`
}

// LoadFile reads a YAML or TOML profile file. The file names a built-in
// base profile (chrome when omitted) and overrides any of its fields.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes profile override data; format is a file extension
// (".yaml", ".yml" or ".toml")
func Parse(data []byte, format string) (*Profile, error) {
	var o override
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
	return o.apply()
}

func (o *override) apply() (*Profile, error) {
	baseName := o.Base
	if baseName == "" {
		baseName = Chrome
	}
	p, ok := Lookup(baseName)
	if !ok {
		return nil, fmt.Errorf("unknown base profile %q", baseName)
	}

	if o.Name != "" {
		p.Name = o.Name
	}
	if o.UserAgent != "" {
		p.UserAgent = o.UserAgent
	}
	if len(o.HeaderOrder) > 0 {
		p.HeaderOrder = append([]string(nil), o.HeaderOrder...)
	}
	mergeAccept(&p.Accept, o.Accept)
	if o.AcceptLanguage != "" {
		p.AcceptLanguage = o.AcceptLanguage
	}
	if o.AcceptEncoding != "" {
		p.AcceptEncoding = o.AcceptEncoding
	}
	for ext, mt := range o.UploadTypes {
		p.UploadTypes[strings.TrimPrefix(strings.ToLower(ext), ".")] = mt
	}
	if o.FullQueryEncoding != nil {
		p.FullQueryEncoding = *o.FullQueryEncoding
	}
	if o.CarryFragmentOnRedirect != nil {
		p.CarryFragmentOnRedirect = *o.CarryFragmentOnRedirect
	}
	return p, nil
}

func mergeAccept(dst *AcceptHeaders, src AcceptHeaders) {
	if src.Document != "" {
		dst.Document = src.Document
	}
	if src.Image != "" {
		dst.Image = src.Image
	}
	if src.Stylesheet != "" {
		dst.Stylesheet = src.Stylesheet
	}
	if src.Script != "" {
		dst.Script = src.Script
	}
	if src.Other != "" {
		dst.Other = src.Other
	}
}

// Resolve picks the profile for a client: the override file when set,
// otherwise the named built-in
func Resolve(name, file string) (*Profile, error) {
	if file != "" {
		return LoadFile(file)
	}
	if name == "" {
		return Default(), nil
	}
	p, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}
