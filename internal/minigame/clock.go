package minigame

import "time"

// Clock returns the current time.
type Clock func() time.Time

// WallClock is time.Now without the monotonic reading, so subtractions follow
// the wall clock (system clock adjustments included).
func WallClock() time.Time { return time.Now().Round(0) }

// ElapsedMs returns the milliseconds from start to now, clamped at zero when
// the clock moved backwards.
func ElapsedMs(start, now time.Time) int64 {
	d := now.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}
