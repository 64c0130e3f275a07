package region

import "log"

// verbose gates the log.Printf-style diagnostic output this package emits
// on growth events. Off by default; cmd/allocbench's --verbose flag turns
// it on via SetVerbose for the process lifetime, the same coarse toggle the
// teacher stack uses rather than a structured logging library (see
// DESIGN.md's logging justification).
var verbose bool

// SetVerbose turns growth diagnostics on or off for every HostMemory
// backend in this package.
func SetVerbose(v bool) {
	verbose = v
}

func logGrowth(backend string, minBytes, newEnd uint32) {
	if verbose {
		log.Printf("region: %s grew by >= %d bytes, new end %d", backend, minBytes, newEnd)
	}
}
