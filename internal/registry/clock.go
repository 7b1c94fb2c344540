package registry

import "time"

// TimeSource supplies the opaque time marker stamped on state changes. The
// registry itself never samples a clock; every mutating operation receives
// the marker as an argument, so hosts decide what "now" means (wall clock,
// ledger height, test sequence).
type TimeSource interface {
	Now() int64
}

// WallClock is the production TimeSource: Unix seconds, monotonically
// non-decreasing.
type WallClock struct{}

// Now returns the current Unix timestamp in seconds.
func (WallClock) Now() int64 {
	return time.Now().Unix()
}
