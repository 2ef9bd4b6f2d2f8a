// Package fetcher performs the HTTP GETs of a walk.
//
// Redirects are followed manually rather than by net/http so that every hop
// is checked: the Location header must be present, it is resolved against the
// current URL, and the target must stay on http or https. The number of
// requests issued for one Fetch is bounded by the configured hop budget.
//
// HTTPFetcher optionally routes connections through a SOCKS5 proxy and paces
// requests with a token bucket. Response bodies are decompressed (gzip,
// deflate, brotli), capped in size and decoded to UTF-8.
package fetcher
