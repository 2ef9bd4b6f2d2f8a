// Package weburl validates and canonicalizes the web URLs that a walk is
// allowed to touch.
//
// Only absolute http and https URLs with a host leave this package.
// Canonicalization for the visited set happens here once, so callers never
// compare raw URL strings themselves.
package weburl
