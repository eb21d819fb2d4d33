package herofield

import "math"

// splitmix64 is a fixed, reproducible mixer. Phases derive from it so the
// same seed and grid index always yield the same drift.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// unitFloat maps a hash to [0, 1).
func unitFloat(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

// driftPhases returns the two drift phase offsets of particle index.
func driftPhases(seed, index uint64) (float64, float64) {
	h := splitmix64(seed ^ splitmix64(index))
	return 2 * math.Pi * unitFloat(h), 2 * math.Pi * unitFloat(splitmix64(h))
}
