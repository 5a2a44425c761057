package models

import "gonum.org/v1/gonum/spatial/r3"

// Segment is one oriented link of a growth chain.
type Segment struct {
	Position  r3.Vec
	Direction r3.Vec

	// Accumulated roll angle around Direction, in radians.
	Rotation float64
}

// Skeleton is the ordered chain of segments of a grown instance, from root to
// tip. It is not modified once generated.
type Skeleton []Segment

// Tip returns the last segment. It panics on an empty skeleton.
func (s Skeleton) Tip() Segment {
	return s[len(s)-1]
}
