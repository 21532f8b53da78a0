// Package profile holds per-browser static data: the header order the
// browser puts on the wire, default Accept headers per resource kind, the
// upload MIME-type table and behavior flags consulted by the load pipeline.
// Built-in profiles can be extended from YAML or TOML override files.
package profile
