// Package workload generates the demand accesses that drive a cache
// controller.
package workload

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sarchlab/streampf/mem/prefetch"
)

// An Access is a demand memory access issued by a core.
type Access struct {
	PC      uint64
	Address uint64
	Type    prefetch.RequestType
}

// A Workload produces accesses one by one.
type Workload interface {
	// Next returns the next access. The second return value is false if
	// there is no more access.
	Next() (Access, bool)
}

// A Func adapts a function to the Workload interface.
type Func func() (Access, bool)

// Next calls the function.
func (f Func) Next() (Access, bool) {
	return f()
}

// Sequential returns n loads to consecutive elements, starting from base.
func Sequential(base uint64, n int, elemSize uint64) Workload {
	return Strided(base, n, int64(elemSize))
}

// Reverse returns n loads to consecutive elements, walking down from base.
func Reverse(base uint64, n int, elemSize uint64) Workload {
	return Strided(base, n, -int64(elemSize))
}

// Strided returns n loads separated by stride bytes.
func Strided(base uint64, n int, stride int64) Workload {
	pc := uint64(0x1000)
	i := 0

	return Func(func() (Access, bool) {
		if i >= n {
			return Access{}, false
		}

		a := Access{
			PC:      pc,
			Address: base + uint64(int64(i)*stride),
			Type:    prefetch.RequestTypeLoad,
		}
		i++

		return a, true
	})
}

// Interleave takes accesses from the workloads in a round-robin fashion until
// all of them are exhausted. Each workload gets a distinct PC.
func Interleave(workloads ...Workload) Workload {
	active := make([]bool, len(workloads))
	for i := range active {
		active[i] = true
	}

	next := 0
	numActive := len(workloads)

	return Func(func() (Access, bool) {
		for numActive > 0 {
			i := next
			next = (next + 1) % len(workloads)

			if !active[i] {
				continue
			}

			a, ok := workloads[i].Next()
			if !ok {
				active[i] = false
				numActive--

				continue
			}

			a.PC += uint64(i) * 4

			return a, true
		}

		return Access{}, false
	})
}

// Random returns n loads to random lines in [base, base+span). The same seed
// always produces the same accesses.
func Random(seed int64, base, span uint64, n int) Workload {
	rng := rand.New(rand.NewSource(seed))
	i := 0

	return Func(func() (Access, bool) {
		if i >= n || span == 0 {
			return Access{}, false
		}

		i++

		return Access{
			PC:      0x2000,
			Address: base + uint64(rng.Int63n(int64(span))),
			Type:    prefetch.RequestTypeLoad,
		}, true
	})
}

// KMeans mimics the memory accesses of a k-means clustering pass. For every
// point, each feature of the point is compared with the same feature of every
// cluster center, and the membership of the point is then stored.
func KMeans(numPoints, numFeatures, numClusters int) Workload {
	const (
		featureBase    = uint64(0x1000_0000)
		clusterBase    = uint64(0x2000_0000)
		membershipBase = uint64(0x3000_0000)
		floatSize      = 4
	)

	point, cluster, feature := 0, 0, 0
	loadCenter := false

	return Func(func() (Access, bool) {
		if point >= numPoints {
			return Access{}, false
		}

		if cluster == numClusters {
			a := Access{
				PC:      0x3008,
				Address: membershipBase + uint64(point)*floatSize,
				Type:    prefetch.RequestTypeStore,
			}

			point++
			cluster = 0

			return a, true
		}

		if !loadCenter {
			a := Access{
				PC: 0x3000,
				Address: featureBase +
					uint64(point*numFeatures+feature)*floatSize,
				Type: prefetch.RequestTypeLoad,
			}
			loadCenter = true

			return a, true
		}

		a := Access{
			PC: 0x3004,
			Address: clusterBase +
				uint64(cluster*numFeatures+feature)*floatSize,
			Type: prefetch.RequestTypeLoad,
		}
		loadCenter = false

		feature++
		if feature == numFeatures {
			feature = 0
			cluster++
		}

		return a, true
	})
}

// A Factory creates a workload with about n accesses.
type Factory func(n int, seed int64) Workload

var registry = map[string]Factory{
	"sequential": func(n int, _ int64) Workload {
		return Sequential(0x1000_0000, n, 8)
	},
	"reverse": func(n int, _ int64) Workload {
		return Reverse(0x1000_0000+uint64(n)*8, n, 8)
	},
	"strided": func(n int, _ int64) Workload {
		return Strided(0x1000_0000, n, 192)
	},
	"interleaved": func(n int, _ int64) Workload {
		return Interleave(
			Sequential(0x1000_0000, n/3, 8),
			Reverse(0x2000_0000, n/3, 8),
			Strided(0x3000_0000, n-2*(n/3), 256),
		)
	},
	"random": func(n int, seed int64) Workload {
		return Random(seed, 0x1000_0000, 64<<20, n)
	},
	"kmeans": func(n int, _ int64) Workload {
		const numFeatures, numClusters = 34, 5

		perPoint := numClusters*numFeatures*2 + 1
		numPoints := (n + perPoint - 1) / perPoint

		return KMeans(numPoints, numFeatures, numClusters)
	},
}

// Names returns the names of the built-in workloads.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New creates a built-in workload by name.
func New(name string, n int, seed int64) (Workload, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q, available: %v",
			name, Names())
	}

	return f(n, seed), nil
}

// Collect drains a workload. It is mostly useful for small workloads and
// tests.
func Collect(w Workload) []Access {
	var accesses []Access

	for {
		a, ok := w.Next()
		if !ok {
			return accesses
		}

		accesses = append(accesses, a)
	}
}
