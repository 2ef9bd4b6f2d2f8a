// Package sanitize rewrites fetched HTML so it can be embedded inertly.
//
// Scripts, frames and plugin elements are removed, meta refreshes are
// dropped, inline event handlers and javascript: targets are stripped, and
// a single <base> element pointing at the page's final URL is placed at the
// start of <head> so relative references keep resolving after the document
// leaves its origin.
//
// Sanitize is idempotent: feeding its output back in returns the same string.
package sanitize
