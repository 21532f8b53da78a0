// Package browser wires the engine components into a Client.
//
// A Client owns one browsing session: its profile, credential store,
// response cache, transport, window registry and load pipeline. Components
// are shared by reference, never through package-level state, so several
// clients can run side by side in one process.
package browser
