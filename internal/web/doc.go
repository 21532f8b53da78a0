// Package web holds the data model shared by every engine component:
// requests, responses, ordered headers, response bodies that spill to disk
// past a size threshold, URL normalization and the error taxonomy.
package web
