// Package playback replays an ordered sequence of trajectories against a
// caller-supplied clock and reports the pose at each tick.
package playback

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pathreplay/internal/se2"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

// ErrEmptySequence is returned when a sequence or scheduler is built from
// zero trajectories.
var ErrEmptySequence = errors.New("playback: trajectory sequence is empty")

// Sequence is an ordered, non-empty list of trajectories. It is read-only
// after construction and may be shared by any number of schedulers.
type Sequence struct {
	trajectories []trajectory.Trajectory
	// prior[i] is the sum of durations of trajectories [0, i).
	prior []float64
	total float64
}

// NewSequence copies trs into a new sequence.
func NewSequence(trs []trajectory.Trajectory) (*Sequence, error) {
	if len(trs) == 0 {
		return nil, ErrEmptySequence
	}

	seq := &Sequence{
		trajectories: make([]trajectory.Trajectory, len(trs)),
		prior:        make([]float64, len(trs)),
	}
	for i, tr := range trs {
		if tr == nil {
			return nil, fmt.Errorf("trajectory %d is nil: %w", i, ErrEmptySequence)
		}
		seq.trajectories[i] = tr
		seq.prior[i] = seq.total
		seq.total += tr.Duration()
	}
	return seq, nil
}

// Len returns the number of trajectories.
func (s *Sequence) Len() int { return len(s.trajectories) }

// At returns the i-th trajectory.
func (s *Sequence) At(i int) trajectory.Trajectory { return s.trajectories[i] }

// Trajectories returns a copy of the underlying slice.
func (s *Sequence) Trajectories() []trajectory.Trajectory {
	out := make([]trajectory.Trajectory, len(s.trajectories))
	copy(out, s.trajectories)
	return out
}

// PriorDuration returns the summed duration of every trajectory before i.
func (s *Sequence) PriorDuration(i int) float64 { return s.prior[i] }

// TotalDuration is the length of one full playback cycle in seconds.
func (s *Sequence) TotalDuration() float64 { return s.total }

// GlobalStart is the start pose of the first trajectory.
func (s *Sequence) GlobalStart() se2.Pose { return s.trajectories[0].Start() }

// GlobalEnd is the end pose of the last trajectory.
func (s *Sequence) GlobalEnd() se2.Pose { return s.trajectories[len(s.trajectories)-1].End() }

// NewScheduler returns an independent scheduler over this sequence.
func (s *Sequence) NewScheduler() *Scheduler {
	return &Scheduler{seq: s}
}
