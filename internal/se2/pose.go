// Package se2 implements planar rigid-body poses and the 3x3 homogeneous
// transforms used to compare them.
package se2

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pose is a 2D rigid-body position and orientation. Heading is in radians,
// measured counter-clockwise from the +X axis.
type Pose struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Heading float64 `json:"heading" yaml:"heading"`
}

// NewPose returns the pose (x, y, heading).
func NewPose(x, y, heading float64) Pose {
	return Pose{X: x, Y: y, Heading: heading}
}

// Position returns the translational part of the pose.
func (p Pose) Position() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// HeadingVec returns the unit vector pointing along the heading.
func (p Pose) HeadingVec() r2.Vec {
	return r2.Vec{X: math.Cos(p.Heading), Y: math.Sin(p.Heading)}
}

// IsFinite reports whether every component is a finite number.
func (p Pose) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Heading} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", p.X, p.Y, p.Heading)
}

// NormalizeAngle wraps theta into (-π, π].
func NormalizeAngle(theta float64) float64 {
	wrapped := math.Mod(theta, 2*math.Pi)
	switch {
	case wrapped > math.Pi:
		wrapped -= 2 * math.Pi
	case wrapped <= -math.Pi:
		wrapped += 2 * math.Pi
	}
	return wrapped
}

// AngleDiff returns the signed shortest rotation taking a to b.
func AngleDiff(a, b float64) float64 {
	return NormalizeAngle(b - a)
}
