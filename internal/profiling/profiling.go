package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-pass CPU profiler. Timings accumulate under a name until
// ResetFrame is called at the start of the next render pass.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	frameCounts = make(map[string]int)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		frameCounts[name]++
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	clear(frameCounts)
	mu.Unlock()
}

// Entry is the accumulated time for one tracked name.
type Entry struct {
	Name  string
	Total time.Duration
	Calls int
}

// Snapshot returns the current totals, largest first.
func Snapshot() []Entry {
	mu.Lock()
	out := make([]Entry, 0, len(frameTotals))
	for k, v := range frameTotals {
		out = append(out, Entry{Name: k, Total: v, Calls: frameCounts[k]})
	}
	mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopN formats top N durations from the current frame totals.
// Example: "render.Update:4.2ms, meshing.BuildChunkMesh:2.1ms(x12)"
func TopN(n int) string {
	list := Snapshot()
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		s := fmt.Sprintf("%s:%.1fms", e.Name, float64(e.Total.Microseconds())/1000.0)
		if e.Calls > 1 {
			s += fmt.Sprintf("(x%d)", e.Calls)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
