package trajectory

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/pathreplay/internal/se2"
)

// Linear moves from start to end at a constant rate in x, y and heading.
// Heading follows the shortest arc unless SetHeadingMode selects RawHeading.
type Linear struct {
	start, end se2.Pose
	duration   float64
	heading    HeadingMode
}

var _ Trajectory = (*Linear)(nil)

// NewLinear creates a constant-rate segment lasting duration seconds.
func NewLinear(start, end se2.Pose, duration float64) (*Linear, error) {
	if err := validateDuration(duration); err != nil {
		return nil, err
	}
	if err := validatePoses(start, end); err != nil {
		return nil, err
	}
	return &Linear{start: start, end: end, duration: duration}, nil
}

// SetHeadingMode chooses how heading is interpolated. The default is
// ShortestArc.
func (l *Linear) SetHeadingMode(m HeadingMode) { l.heading = m }

func (l *Linear) Duration() float64 { return l.duration }
func (l *Linear) Start() se2.Pose   { return l.start }
func (l *Linear) End() se2.Pose     { return l.end }

// VelocityAt returns the constant travel speed inside the segment and 0
// outside it.
func (l *Linear) VelocityAt(t float64) float64 {
	if t < 0 || t >= l.duration {
		return 0
	}
	return r2.Norm(r2.Sub(l.end.Position(), l.start.Position())) / l.duration
}

// Sample clamps t into [0, Duration()].
func (l *Linear) Sample(t float64) se2.Pose {
	switch {
	case t >= l.duration:
		return l.end
	case t <= 0:
		return l.start
	}
	return lerpPose(l.start, l.end, t/l.duration, l.heading)
}
