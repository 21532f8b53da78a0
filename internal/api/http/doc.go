// Package http implements the handlers of the control API: loading URLs
// into windows, inspecting and closing windows, walking history, flushing
// queued downloads and reading engine metrics.
package http
