// Package pac evaluates proxy auto-config scripts.
//
// A script is fetched once per PAC URL, compiled once with goja, and run in
// a fresh VM for every lookup. The standard helper functions
// (isPlainHostName, dnsDomainIs, shExpMatch, isInNet, weekdayRange, ...) are
// provided natively. FindProxyForURL results are parsed into a *web.Proxy,
// nil meaning a direct connection.
package pac
