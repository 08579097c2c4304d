package trajectory

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/pathreplay/internal/se2"
)

// Profiled follows the straight line from start to end under a trapezoidal
// velocity profile: accelerate at maxAccel, cruise at maxVel, decelerate.
// Short moves that never reach maxVel use a triangular profile. Heading is
// interpolated by distance travelled.
type Profiled struct {
	start, end se2.Pose
	dir        r2.Vec // unit vector start -> end
	distance   float64

	maxVel   float64
	maxAccel float64
	heading  HeadingMode

	accelTime  float64
	cruiseTime float64
	peakVel    float64
	duration   float64
}

var _ Trajectory = (*Profiled)(nil)

// NewProfiled builds a motion-profiled straight segment. The endpoints must
// be distinct positions; turn in place with Linear.
func NewProfiled(start, end se2.Pose, maxVel, maxAccel float64) (*Profiled, error) {
	if err := validatePoses(start, end); err != nil {
		return nil, err
	}
	if !(maxVel > 0) || !(maxAccel > 0) || math.IsInf(maxVel, 0) || math.IsInf(maxAccel, 0) {
		return nil, fmt.Errorf("%w: max_vel=%v max_accel=%v", ErrInvalidProfile, maxVel, maxAccel)
	}

	delta := r2.Sub(end.Position(), start.Position())
	distance := r2.Norm(delta)
	if distance == 0 {
		return nil, fmt.Errorf("%w: start and end positions coincide", ErrInvalidProfile)
	}

	p := &Profiled{
		start:    start,
		end:      end,
		dir:      r2.Scale(1/distance, delta),
		distance: distance,
		maxVel:   maxVel,
		maxAccel: maxAccel,
	}

	accelTime := maxVel / maxAccel
	accelDist := 0.5 * maxAccel * accelTime * accelTime
	if 2*accelDist >= distance {
		// Triangular: peak velocity below maxVel.
		p.accelTime = math.Sqrt(distance / maxAccel)
		p.peakVel = maxAccel * p.accelTime
	} else {
		p.accelTime = accelTime
		p.peakVel = maxVel
		p.cruiseTime = (distance - 2*accelDist) / maxVel
	}
	p.duration = 2*p.accelTime + p.cruiseTime
	return p, nil
}

// SetHeadingMode chooses how heading is interpolated. The default is
// ShortestArc.
func (p *Profiled) SetHeadingMode(m HeadingMode) { p.heading = m }

func (p *Profiled) Duration() float64 { return p.duration }
func (p *Profiled) Start() se2.Pose   { return p.start }
func (p *Profiled) End() se2.Pose     { return p.end }

// DistanceAt returns the distance travelled after t seconds, clamped to the
// segment.
func (p *Profiled) DistanceAt(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= p.duration:
		return p.distance
	case t < p.accelTime:
		return 0.5 * p.maxAccel * t * t
	case t < p.accelTime+p.cruiseTime:
		accelDist := 0.5 * p.maxAccel * p.accelTime * p.accelTime
		return accelDist + p.peakVel*(t-p.accelTime)
	default:
		remaining := p.duration - t
		return p.distance - 0.5*p.maxAccel*remaining*remaining
	}
}

// VelocityAt returns the profile speed at time t.
func (p *Profiled) VelocityAt(t float64) float64 {
	switch {
	case t <= 0 || t >= p.duration:
		return 0
	case t < p.accelTime:
		return p.maxAccel * t
	case t < p.accelTime+p.cruiseTime:
		return p.peakVel
	default:
		return p.maxAccel * (p.duration - t)
	}
}

// Sample clamps t into [0, Duration()].
func (p *Profiled) Sample(t float64) se2.Pose {
	switch {
	case t >= p.duration:
		return p.end
	case t <= 0:
		return p.start
	}

	s := p.DistanceAt(t)
	pos := r2.Add(p.start.Position(), r2.Scale(s, p.dir))
	f := s / p.distance
	return se2.Pose{
		X:       pos.X,
		Y:       pos.Y,
		Heading: lerpHeading(p.start.Heading, p.end.Heading, f, p.heading),
	}
}
