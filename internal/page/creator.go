package page

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
	"go.uber.org/zap"
)

// Creator builds pages from responses
type Creator struct {
	retainer Retainer
	log      *logging.Logger
}

// Option configures a Creator
type Option func(*Creator)

// WithRetainer keeps pages from releasing responses r still holds
func WithRetainer(r Retainer) Option {
	return func(c *Creator) { c.retainer = r }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Creator) { c.log = logging.OrNop(l).Component("page") }
}

// NewCreator creates a page creator
func NewCreator(opts ...Option) *Creator {
	c := &Creator{log: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePage classifies resp and builds the matching page for win
func (c *Creator) CreatePage(ctx context.Context, resp *web.Response, win *window.Window) (window.Page, error) {
	data, err := resp.ContentBytes()
	if err != nil {
		return nil, fmt.Errorf("read response content: %w", err)
	}

	kind, contentType := Classify(resp.ContentType(), data)
	base := newPage(resp, win, kind, contentType, c.retainer)

	if kind == KindBinary {
		return &BinaryPage{Page: base}, nil
	}

	text, cs, err := decode(data, resp.ContentCharset(), kind)
	if err != nil {
		return nil, fmt.Errorf("decode %s content: %w", cs, err)
	}

	c.log.Debug("page created",
		zap.String("url", base.url.String()),
		zap.Stringer("kind", kind),
		zap.String("content_type", contentType),
		zap.String("charset", cs))

	switch kind {
	case KindHTML:
		hp, err := parseHTML(base, text, cs)
		if err != nil {
			return nil, fmt.Errorf("parse HTML: %w", err)
		}
		return hp, nil
	case KindXML:
		return parseXML(base, text, cs), nil
	default:
		return &TextPage{Page: base, text: text, charset: cs}, nil
	}
}
