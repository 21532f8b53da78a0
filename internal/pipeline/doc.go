// Package pipeline drives a logical navigation from request to page.
//
// A load resolves its target window, short-cuts fragment-only navigation,
// dispatches on the URL scheme, consults the response cache, follows the
// redirect chain hop by hop and finally hands the response to a page
// creator inside the resolved window. Frames declared by the new page are
// loaded into child windows, subject to X-Frame-Options and CSP
// frame-ancestors.
//
// Background navigation goes through Download, which fetches immediately
// but defers materialization until ApplyDownloads.
package pipeline
