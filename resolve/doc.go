// Package resolve turns a user's query into the text that gets embedded.
//
// Plain text passes through. Input containing an http(s) URL is replaced by
// the visible text of that page, fetched by a TextExtractor.
package resolve
