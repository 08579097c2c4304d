// Package trajectory defines the time-parameterised motion segments consumed
// by playback, and a few concrete segment shapes.
//
// A Trajectory is generated elsewhere; this package only depends on its
// sampling contract. Implementations must satisfy Sample(0) == Start() and
// Sample(Duration()) == End() within floating tolerance. What Sample returns
// outside [0, Duration()] is up to the implementation; the ones here clamp.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/pathreplay/internal/se2"
)

var (
	// ErrInvalidDuration is returned for negative, NaN or infinite durations.
	ErrInvalidDuration = errors.New("trajectory: invalid duration")
	// ErrInvalidProfile is returned when motion profile limits are unusable.
	ErrInvalidProfile = errors.New("trajectory: invalid motion profile")
	// ErrInvalidPose is returned when a start or end pose is not finite.
	ErrInvalidPose = errors.New("trajectory: invalid pose")
)

// Trajectory is a single time-parameterised motion segment.
type Trajectory interface {
	// Duration is the segment length in seconds, never negative.
	Duration() float64
	Start() se2.Pose
	End() se2.Pose
	// Sample returns the pose t seconds into the segment.
	Sample(t float64) se2.Pose
}

// SpeedProfile is implemented by trajectories that know their speed along
// the path.
type SpeedProfile interface {
	VelocityAt(t float64) float64
}

// Speed returns tr's speed t seconds in, or 0 when tr does not move or does
// not report a speed.
func Speed(tr Trajectory, t float64) float64 {
	if sp, ok := tr.(SpeedProfile); ok {
		return sp.VelocityAt(t)
	}
	return 0
}

func validateDuration(d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}
	return nil
}

func validatePoses(poses ...se2.Pose) error {
	for _, p := range poses {
		if !p.IsFinite() {
			return fmt.Errorf("%w: %v", ErrInvalidPose, p)
		}
	}
	return nil
}

// HeadingMode selects how heading is interpolated between two poses.
type HeadingMode int

const (
	// ShortestArc turns through the smaller of the two arcs between the
	// headings, so 3 to -3 passes through π.
	ShortestArc HeadingMode = iota
	// RawHeading interpolates the headings as authored, so a segment from
	// 0 to 3π/2 turns the long way round.
	RawHeading
)

// lerpPose interpolates each component of a toward b by fraction f.
func lerpPose(a, b se2.Pose, f float64, mode HeadingMode) se2.Pose {
	return se2.Pose{
		X:       a.X + f*(b.X-a.X),
		Y:       a.Y + f*(b.Y-a.Y),
		Heading: lerpHeading(a.Heading, b.Heading, f, mode),
	}
}

func lerpHeading(a, b, f float64, mode HeadingMode) float64 {
	if mode == RawHeading {
		return a + f*(b-a)
	}
	return a + f*se2.AngleDiff(a, b)
}

// SamplePath returns poses spaced at most step seconds apart along tr,
// including both end points. A non-positive step or zero duration yields
// just the start and end poses.
func SamplePath(tr Trajectory, step float64) []se2.Pose {
	d := tr.Duration()
	if step <= 0 || d <= 0 {
		return []se2.Pose{tr.Start(), tr.End()}
	}

	n := int(math.Ceil(d / step))
	path := make([]se2.Pose, 0, n+1)
	for i := 0; i < n; i++ {
		path = append(path, tr.Sample(d*float64(i)/float64(n)))
	}
	// Last point comes from End so it is exact.
	path = append(path, tr.End())
	return path
}

// TotalDuration sums the durations of trs.
func TotalDuration(trs []Trajectory) float64 {
	var total float64
	for _, tr := range trs {
		total += tr.Duration()
	}
	return total
}
