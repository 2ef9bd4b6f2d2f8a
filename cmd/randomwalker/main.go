// Package main provides the entry point for the randomwalker CLI.
//
// randomwalker starts from a web page and repeatedly jumps to a randomly
// chosen outbound link, printing where each hop landed. It can also serve
// the same walk over HTTP.
//
// Usage:
//
//	randomwalker walk https://example.com/ --steps 10
//	randomwalker serve --listen 127.0.0.1:8080
//
// See --help for all available options.
package main

func main() {
	Execute()
}
