package window

import (
	"net/url"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

// Page is the content enclosed by a window
type Page interface {
	URL() *url.URL
	Response() *web.Response
	Release() error
}

// FrameDecl is a frame a page asks to have created and loaded
type FrameDecl struct {
	Name string
	URL  *url.URL
}

// Window is a top-level window or a frame. All fields are guarded by the
// owning registry's lock.
type Window struct {
	reg *Registry

	id       id.WindowID
	name     string
	parentID id.WindowID
	openerID id.WindowID
	children []id.WindowID

	page        Page
	history     *History
	jobs        *JobManager
	closed      bool
	frameDenied bool
}

func (w *Window) ID() id.WindowID { return w.id }

func (w *Window) Name() string {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.name
}

// SetName renames the window
func (w *Window) SetName(name string) {
	w.reg.mu.Lock()
	defer w.reg.mu.Unlock()
	w.name = name
}

// IsTopLevel reports whether the window is its own parent
func (w *Window) IsTopLevel() bool { return w.parentID == "" }

// Parent returns the parent window; a top-level window is its own parent
func (w *Window) Parent() *Window {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.parentLocked()
}

func (w *Window) parentLocked() *Window {
	if w.parentID == "" {
		return w
	}
	if p, ok := w.reg.byID[w.parentID]; ok {
		return p
	}
	return w
}

// Top walks parent links to the root window
func (w *Window) Top() *Window {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.topLocked()
}

func (w *Window) topLocked() *Window {
	cur := w
	for {
		p := cur.parentLocked()
		if p == cur {
			return cur
		}
		cur = p
	}
}

// Depth is 0 for a top-level window and grows by one per frame level
func (w *Window) Depth() int {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	depth := 0
	for cur := w; ; depth++ {
		p := cur.parentLocked()
		if p == cur {
			return depth
		}
		cur = p
	}
}

// Opener returns the window that opened this one, or nil when there was
// none or it has since closed
func (w *Window) Opener() *Window {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	if w.openerID == "" {
		return nil
	}
	return w.reg.byID[w.openerID]
}

// Frames returns the window's child frames in creation order
func (w *Window) Frames() []*Window {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.framesLocked()
}

func (w *Window) framesLocked() []*Window {
	out := make([]*Window, 0, len(w.children))
	for _, cid := range w.children {
		if c, ok := w.reg.byID[cid]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Page returns the enclosed page, nil before the first load
func (w *Window) Page() Page {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.page
}

func (w *Window) History() *History { return w.history }
func (w *Window) Jobs() *JobManager { return w.jobs }

func (w *Window) IsClosed() bool {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.closed
}

// FrameDenied reports whether the last load into this frame was refused
// by the response's framing policy
func (w *Window) FrameDenied() bool {
	w.reg.mu.RLock()
	defer w.reg.mu.RUnlock()
	return w.frameDenied
}

// SetFrameDenied records the outcome of the framing policy check
func (w *Window) SetFrameDenied(denied bool) {
	w.reg.mu.Lock()
	defer w.reg.mu.Unlock()
	w.frameDenied = denied
}

func (w *Window) String() string { return w.id.String() }
