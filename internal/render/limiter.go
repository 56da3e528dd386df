package render

import "time"

// FrameLimiter paces a draw loop to a fixed rate.
type FrameLimiter struct {
	limit int
	next  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewFrameLimiter caps the loop at fps frames per second. fps <= 0 disables it.
func NewFrameLimiter(fps int) *FrameLimiter {
	return &FrameLimiter{limit: fps, now: time.Now, sleep: time.Sleep}
}

// Limit returns the configured cap.
func (f *FrameLimiter) Limit() int { return f.limit }

// Wait blocks until the next frame is due. It sleeps most of the gap and
// spins the final stretch.
func (f *FrameLimiter) Wait() {
	if f.limit <= 0 {
		f.next = time.Time{}
		return
	}
	target := time.Second / time.Duration(f.limit)

	if f.next.IsZero() {
		f.next = f.now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := f.next.Sub(f.now())
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			f.sleep(remaining - 200*time.Microsecond)
		}
	}

	// resync after a hitch instead of racing to catch up
	if late := f.now().Sub(f.next); late > target {
		f.next = f.now().Add(target)
	}
}
