// Package main provides the entry point for the handlescan CLI.
//
// handlescan probes a catalog of platforms for a handle, extracts the
// public signals of every profile it finds, scores how reliable each hit
// is, and correlates bios shared across platforms.
//
// Usage:
//
//	handlescan scan <handle>...
//	handlescan compare <handle>
//	handlescan serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
