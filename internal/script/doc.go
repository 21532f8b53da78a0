// Package script evaluates javascript: URLs against the page they target.
//
// Each evaluation runs in a fresh goja VM exposing a small host surface:
// window, document (title, URL, location), location and console. Timers
// are inert and module loading is unavailable. Evaluations are interrupted
// when the configured timeout or the context expires.
package script
