package window

import "strings"

// Resolve maps target onto a window relative to opener. A nil window means
// a new top-level window must be created; name is the name to give it,
// empty for _blank.
func (r *Registry) Resolve(opener *Window, target string) (w *Window, name string) {
	switch strings.ToLower(target) {
	case "", "_self":
		return opener, ""
	case "_parent":
		return opener.Parent(), ""
	case "_top":
		return opener.Top(), ""
	case "_blank":
		return nil, ""
	}

	r.mu.RLock()
	found := findFrameLocked(opener, target)
	if found == nil {
		found = r.findByNameLocked(target)
		r.mu.RUnlock()
		if found == nil {
			return nil, target
		}
		return found, ""
	}
	events := r.eventsLocked(Event{Kind: EventReused, Window: found})
	r.mu.RUnlock()

	r.emit(events)
	return found, ""
}

// findFrameLocked searches w's frame subtree depth-first
func findFrameLocked(w *Window, name string) *Window {
	for _, c := range w.framesLocked() {
		if c.name == name {
			return c
		}
		if found := findFrameLocked(c, name); found != nil {
			return found
		}
	}
	return nil
}
