package browser

import (
	"github.com/GriffinCanCode/AgentOS/webcore/internal/page"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/window"
)

// PageSummary describes a loaded page for logs, the CLI and the control API
type PageSummary struct {
	URL         string `json:"url"`
	Status      int    `json:"status"`
	StatusText  string `json:"status_text,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Title       string `json:"title,omitempty"`
	Charset     string `json:"charset,omitempty"`
	Bytes       int64  `json:"bytes"`
	Frames      int    `json:"frames,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
	Text        string `json:"text,omitempty"`
}

// WindowSummary describes one window of the registry
type WindowSummary struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	TopLevel    bool         `json:"top_level"`
	Current     bool         `json:"current"`
	Parent      string       `json:"parent,omitempty"`
	Opener      string       `json:"opener,omitempty"`
	FrameDenied bool         `json:"frame_denied,omitempty"`
	History     int          `json:"history"`
	Jobs        int          `json:"jobs"`
	Page        *PageSummary `json:"page,omitempty"`
}

// Summarize describes pg; withText includes the textual content
func Summarize(pg window.Page, withText bool) PageSummary {
	s := PageSummary{URL: pg.URL().String()}
	if resp := pg.Response(); resp != nil {
		s.Status = resp.StatusCode
		s.StatusText = resp.StatusMessage
		s.ContentType = resp.ContentType()
		s.DurationMS = resp.LoadDuration.Milliseconds()
		if resp.Content != nil {
			s.Bytes = resp.Content.Len()
		}
	}
	if k, ok := pg.(interface{ Kind() page.Kind }); ok {
		s.Kind = k.Kind().String()
	}
	if k, ok := pg.(interface{ ContentType() string }); ok && k.ContentType() != "" {
		s.ContentType = k.ContentType()
	}
	if t, ok := pg.(interface{ Title() string }); ok {
		s.Title = t.Title()
	}
	if cs, ok := pg.(interface{ Charset() string }); ok {
		s.Charset = cs.Charset()
	}
	if f, ok := pg.(interface{ Frames() []window.FrameDecl }); ok {
		s.Frames = len(f.Frames())
	}
	if withText {
		switch t := pg.(type) {
		case interface{ Text() string }:
			s.Text = t.Text()
		case interface{ Content() string }:
			s.Text = t.Content()
		}
	}
	return s
}

// SummarizeWindow describes w and its page
func (c *Client) SummarizeWindow(w *window.Window) WindowSummary {
	s := WindowSummary{
		ID:          w.ID().String(),
		Name:        w.Name(),
		TopLevel:    w.IsTopLevel(),
		Current:     c.windows.Current() == w,
		FrameDenied: w.FrameDenied(),
		History:     w.History().Len(),
		Jobs:        w.Jobs().Count(),
	}
	if !s.TopLevel {
		s.Parent = w.Parent().ID().String()
	}
	if o := w.Opener(); o != nil {
		s.Opener = o.ID().String()
	}
	if pg := w.Page(); pg != nil {
		ps := Summarize(pg, false)
		s.Page = &ps
	}
	return s
}

// WindowSummaries describes every open window in creation order
func (c *Client) WindowSummaries() []WindowSummary {
	windows := c.windows.Windows()
	out := make([]WindowSummary, 0, len(windows))
	for _, w := range windows {
		out = append(out, c.SummarizeWindow(w))
	}
	return out
}
