/*
Package transport executes one HTTP exchange for the load pipeline.

For each request it picks a proxy route (explicit request proxy, then the
auto-config resolver, then the client-wide proxy and its bypass globs),
encodes the body (url-encoded, multipart or text/plain), lays the headers
out in the browser profile's order, pushes request credentials into the
shared store and answers a Basic challenge once. The body is decoded
(gzip, deflate, br, zstd) and downloaded into memory or, past the spill
threshold, into a temp file.

Every route has its own resty client over a pooled http.Transport. Clients
never follow redirects and never retry; the only second attempt is a
relaxed-TLS retry when insecure SSL is enabled. A connection closed before
any response yields web.NoHTTPResponse instead of an error, and repeated
connection failures against one host open its circuit breaker.

net/http serializes header maps itself, so the profile order decides which
headers are sent and with which values, not their byte order on the wire.
*/
package transport
