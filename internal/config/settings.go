package config

import (
	"sync"
	"time"
)

// RenderSettings holds values the driver reads every pass and that may be
// changed while the viewer runs.
type RenderSettings struct {
	mu       sync.RWMutex
	slowPass time.Duration
	remesh   bool
}

var globalRenderSettings = &RenderSettings{
	slowPass: 16 * time.Millisecond, // default value
}

// GetSlowPassThreshold returns how long a render pass may take before it is logged
func GetSlowPassThreshold() time.Duration {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.slowPass
}

// SetSlowPassThreshold sets the slow pass threshold
func SetSlowPassThreshold(d time.Duration) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if d < time.Millisecond {
		d = time.Millisecond
	}
	if d > 10*time.Second {
		d = 10 * time.Second
	}

	globalRenderSettings.slowPass = d
}

// RequestRemesh asks the driver to rebuild every chunk mesh on its next pass.
func RequestRemesh() {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.remesh = true
}

// TakeRemeshRequest reports and clears a pending remesh request.
func TakeRemeshRequest() bool {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	r := globalRenderSettings.remesh
	globalRenderSettings.remesh = false
	return r
}
