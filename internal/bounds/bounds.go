// Package bounds holds the numeric ranges shared by every simulation system.
// Beliefs, emotions and tile metrics live in [0, 1]; behavior modifiers in
// [-1, 1]; relationship scores in [-100, 100].
package bounds

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Float | constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Unit clamps v to [0, 1].
func Unit[T constraints.Float](v T) T {
	return Clamp(v, 0, 1)
}

// Signed clamps v to [-1, 1].
func Signed[T constraints.Float](v T) T {
	return Clamp(v, -1, 1)
}

// Score clamps v to the relationship range [-100, 100].
func Score[T constraints.Float](v T) T {
	return Clamp(v, -100, 100)
}

// Gauge clamps v to the non-negative relationship range [0, 100].
func Gauge[T constraints.Float](v T) T {
	return Clamp(v, 0, 100)
}

// InUnit reports whether v lies in [0, 1].
func InUnit[T constraints.Float](v T) bool {
	return v >= 0 && v <= 1
}
