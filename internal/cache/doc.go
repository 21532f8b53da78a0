/*
Package cache keeps prior responses and values derived from them.

Entries are keyed by request URL (fragment ignored) or, for derived
artifacts such as parsed stylesheets, by their literal source text. The
cache is bounded: after each insert the least recently accessed entry is
evicted, one at a time, until the size fits the capacity.

Two notions of "fresh" apply. At store time, Cacheable accepts responses
that look static (an Expires more than ten minutes out, or a Last-Modified
more than ten minutes old, with max-age and s-maxage suppressing Expires).
At access time, Fresh applies Cache-Control lifetimes; a stale entry is
evicted and reported as a miss.
*/
package cache
