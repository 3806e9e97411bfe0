package prefetch

import (
	"fmt"
	"strings"
)

// MaxPfInflight is the number of look-ahead requests a stream can track.
const MaxPfInflight = 8

// RequestType is the kind of memory access observed by the cache controller.
type RequestType int

// A list of request types.
const (
	RequestTypeLoad RequestType = iota
	RequestTypeStore
	RequestTypeIFetch
	RequestTypeAtomic
	RequestTypeRMWRead
	RequestTypeRMWWrite
)

var requestTypeNames = map[RequestType]string{
	RequestTypeLoad:     "LD",
	RequestTypeStore:    "ST",
	RequestTypeIFetch:   "IFETCH",
	RequestTypeAtomic:   "ATOMIC",
	RequestTypeRMWRead:  "RMW_Read",
	RequestTypeRMWWrite: "RMW_Write",
}

func (t RequestType) String() string {
	if name, ok := requestTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("RequestType(%d)", int(t))
}

// ParseRequestType converts a request type name to a RequestType. The name is
// case-insensitive.
func ParseRequestType(s string) (RequestType, error) {
	for t, name := range requestTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown request type %q", s)
}

// Controller is the cache controller that owns a prefetcher. The prefetcher
// reads the simulated time from the controller and hands prefetch requests
// over to it.
type Controller interface {
	// CurrentCycle returns the current simulated cycle of the controller.
	CurrentCycle() uint64

	// EnqueuePrefetch asks the controller to fetch a cache line. The
	// prefetcher does not wait for the request to be served.
	EnqueuePrefetch(addr uint64, t RequestType)
}
