// Command streampf drives a cache controller with a stream prefetcher using
// synthetic workloads or recorded traces, and reports how well the
// prefetcher covers the demand misses.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	code := 0
	if err := Execute(); err != nil {
		code = 1
	}

	atexit.Exit(code)
}
