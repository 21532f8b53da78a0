// Package window tracks browsing contexts.
//
// The Registry is the sole owner of every Window. Parent and opener links
// are IDs resolved through the registry, so they never keep a window alive.
// Closing a window closes its frames depth-first and releases their pages;
// the registry always keeps at least one top-level window.
//
// Resolve maps a link or form target (_self, _parent, _top, _blank or a
// name) onto an existing window, or reports that a new top-level window
// must be created.
package window
