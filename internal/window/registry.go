package window

import (
	"slices"
	"sync"
	"weak"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/shared/id"
	"go.uber.org/zap"
)

// DefaultHistorySize bounds each window's history
const DefaultHistorySize = 50

// Registry owns every window of one client
type Registry struct {
	mu        sync.RWMutex
	windows   []*Window
	topLevel  []*Window
	byID      map[id.WindowID]*Window
	jobs      []weak.Pointer[JobManager]
	current   *Window
	listeners []Listener
	shutdown  bool

	historySize int
	log         *logging.Logger
	metrics     *monitoring.Metrics
}

// Option configures a Registry
type Option func(*Registry)

func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) { r.log = logging.OrNop(l).Component("window") }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithHistorySize bounds each window's history; 0 means unbounded
func WithHistorySize(n int) Option {
	return func(r *Registry) { r.historySize = n }
}

// NewRegistry creates a registry holding one empty anonymous top-level
// window, which becomes current
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byID:        make(map[id.WindowID]*Window),
		historySize: DefaultHistorySize,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.OpenTopLevel("", nil)
	return r
}

// AddListener registers l for every later event
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// OpenTopLevel creates a top-level window and makes it current. opener may
// be nil.
func (r *Registry) OpenTopLevel(name string, opener *Window) *Window {
	r.mu.Lock()
	w := r.newWindowLocked(name, "")
	if opener != nil {
		w.openerID = opener.id
	}
	r.topLevel = append(r.topLevel, w)
	r.current = w
	events := r.eventsLocked(Event{Kind: EventOpened, Window: w})
	r.mu.Unlock()

	r.log.Debug("top-level window opened", zap.Stringer("window", w.id), zap.String("name", name))
	r.emit(events)
	return w
}

// OpenFrame creates a frame window inside parent
func (r *Registry) OpenFrame(parent *Window, name string) *Window {
	r.mu.Lock()
	w := r.newWindowLocked(name, parent.id)
	parent.children = append(parent.children, w.id)
	events := r.eventsLocked(Event{Kind: EventOpened, Window: w})
	r.mu.Unlock()

	r.log.Debug("frame opened", zap.Stringer("window", w.id), zap.Stringer("parent", parent.id), zap.String("name", name))
	r.emit(events)
	return w
}

func (r *Registry) newWindowLocked(name string, parent id.WindowID) *Window {
	w := &Window{
		reg:      r,
		id:       id.NewWindowID(),
		name:     name,
		parentID: parent,
		history:  NewHistory(r.historySize),
		jobs:     &JobManager{},
	}
	r.windows = append(r.windows, w)
	r.byID[w.id] = w
	r.jobs = append(r.jobs, weak.Make(w.jobs))
	r.metrics.SetWindowsOpen(len(r.windows))
	return w
}

// Close closes w and its frames depth-first, releasing their pages. When
// the last top-level window closes a fresh empty one replaces it, unless
// the registry is shutting down.
func (r *Registry) Close(w *Window) {
	r.mu.Lock()
	if w.closed {
		r.mu.Unlock()
		return
	}

	var events []Event
	r.closeLocked(w, &events)

	if w.parentID != "" {
		if p, ok := r.byID[w.parentID]; ok {
			p.children = slices.DeleteFunc(p.children, func(c id.WindowID) bool { return c == w.id })
		}
	}

	var replacement *Window
	if len(r.topLevel) == 0 && !r.shutdown {
		replacement = r.newWindowLocked("", "")
		r.topLevel = append(r.topLevel, replacement)
		events = append(events, Event{Kind: EventOpened, Window: replacement})
	}
	if r.current == nil || r.current.closed {
		r.current = nil
		if n := len(r.topLevel); n > 0 {
			r.current = r.topLevel[n-1]
		}
	}
	events = r.eventsLocked(events...)
	r.mu.Unlock()

	if replacement != nil {
		r.log.Debug("last top-level window closed, opened a new one", zap.Stringer("window", replacement.id))
	}
	r.emit(events)
}

// Shutdown closes every top-level window without opening a replacement.
// Later calls to Close never open one either.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.shutdown = true
	tops := slices.Clone(r.topLevel)
	r.mu.Unlock()

	for _, w := range tops {
		r.Close(w)
	}
}

func (r *Registry) closeLocked(w *Window, events *[]Event) {
	for _, c := range w.framesLocked() {
		r.closeLocked(c, events)
	}
	w.children = nil

	if w.page != nil {
		if err := w.page.Release(); err != nil {
			r.log.Warn("releasing page failed", zap.Stringer("window", w.id), zap.Error(err))
		}
		w.page = nil
	}
	w.closed = true

	delete(r.byID, w.id)
	r.windows = slices.DeleteFunc(r.windows, func(x *Window) bool { return x == w })
	r.topLevel = slices.DeleteFunc(r.topLevel, func(x *Window) bool { return x == w })
	r.metrics.SetWindowsOpen(len(r.windows))
	*events = append(*events, Event{Kind: EventClosed, Window: w})
}

// SetEnclosedPage replaces w's page. The frames of the old page are closed
// and the old page released first.
func (r *Registry) SetEnclosedPage(w *Window, page Page) {
	r.mu.Lock()
	if w.closed {
		r.mu.Unlock()
		if page != nil {
			_ = page.Release()
		}
		return
	}

	var events []Event
	for _, c := range w.framesLocked() {
		r.closeLocked(c, &events)
	}
	w.children = nil

	old := w.page
	if old != nil && old != page {
		if err := old.Release(); err != nil {
			r.log.Warn("releasing page failed", zap.Stringer("window", w.id), zap.Error(err))
		}
	}
	w.page = page
	events = append(events, Event{Kind: EventContentChanged, Window: w, OldPage: old, NewPage: page})
	events = r.eventsLocked(events...)
	r.mu.Unlock()

	r.emit(events)
}

// FindByName returns the open window named name, searching in creation
// order
func (r *Registry) FindByName(name string) *Window {
	if name == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByNameLocked(name)
}

func (r *Registry) findByNameLocked(name string) *Window {
	for _, w := range r.windows {
		if w.name == name {
			return w
		}
	}
	return nil
}

// Get returns the open window with the given ID
func (r *Registry) Get(wid id.WindowID) (*Window, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[wid]
	return w, ok
}

// Windows returns every open window, frames included
func (r *Registry) Windows() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.windows)
}

// TopLevelWindows returns the open top-level windows in creation order
func (r *Registry) TopLevelWindows() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.topLevel)
}

// Current returns the window navigation defaults to, or nil after Shutdown
func (r *Registry) Current() *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SetCurrent makes w current; closed windows are ignored
func (r *Registry) SetCurrent(w *Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !w.closed {
		r.current = w
	}
}

// ActiveJobCount sums pending jobs over every job manager still alive,
// including those of closed windows
func (r *Registry) ActiveJobCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	live := r.jobs[:0]
	for _, wp := range r.jobs {
		if jm := wp.Value(); jm != nil {
			total += jm.Count()
			live = append(live, wp)
		}
	}
	clear(r.jobs[len(live):])
	r.jobs = live
	return total
}

// eventsLocked pairs events with the current listeners so they can be
// delivered after the lock is dropped
func (r *Registry) eventsLocked(events ...Event) []Event {
	if len(r.listeners) == 0 {
		return nil
	}
	return events
}

func (r *Registry) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}
