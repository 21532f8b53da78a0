// Package page turns responses into pages.
//
// The Creator classifies a response as HTML, XML (XHTML included), plain
// text or opaque binary from its declared Content-Type, sniffing the bytes
// when the type is missing or generic. Text is decoded with the declared
// charset, then the HTML meta declaration, then a statistical guess.
package page
