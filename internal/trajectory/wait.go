package trajectory

import "github.com/banshee-data/pathreplay/internal/se2"

// Wait holds a single pose for a fixed time.
type Wait struct {
	pose     se2.Pose
	duration float64
}

var _ Trajectory = (*Wait)(nil)

// NewWait creates a stationary segment.
func NewWait(pose se2.Pose, duration float64) (*Wait, error) {
	if err := validateDuration(duration); err != nil {
		return nil, err
	}
	if err := validatePoses(pose); err != nil {
		return nil, err
	}
	return &Wait{pose: pose, duration: duration}, nil
}

func (w *Wait) Duration() float64       { return w.duration }
func (w *Wait) Start() se2.Pose         { return w.pose }
func (w *Wait) End() se2.Pose           { return w.pose }
func (w *Wait) Sample(float64) se2.Pose { return w.pose }
