package sensor

// Diff and InRange are the station's general-purpose comparison helpers, kept
// in the public conversion surface for firmware-side timing and range checks.

// Diff returns the absolute difference between two unsigned counters, such as
// millisecond timestamps taken from a free-running clock.
func Diff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// InRange reports whether lo <= v <= hi.
func InRange(v, lo, hi int) bool {
	return lo <= v && v <= hi
}
