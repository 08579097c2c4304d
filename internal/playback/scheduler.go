package playback

import (
	"github.com/banshee-data/pathreplay/internal/se2"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

// State is the scheduler lifecycle state.
type State string

const (
	StateUnstarted State = "unstarted" // epoch not yet set
	StateRunning   State = "running"   // epoch set, looping forever
)

// TickResult is what one call to Scheduler.Tick observed.
type TickResult struct {
	// Index of the trajectory that was sampled. This is the index active at
	// the start of the tick, even if the tick also advanced past it.
	Index       int
	Trajectory  trajectory.Trajectory
	LocalOffset float64 // seconds into Trajectory, before any wraparound
	Pose        se2.Pose

	// SegmentAdvanced is set when LocalOffset reached the trajectory's
	// duration; the next tick samples the following trajectory.
	SegmentAdvanced bool
	// CycleCompleted is set when the advance wrapped back to index 0 and
	// the epoch was reset to this tick's timestamp.
	CycleCompleted bool
}

// Scheduler tracks which trajectory is active for a playback session.
//
// A Scheduler is owned by a single caller: Tick mutates its state without
// locking and must not be called concurrently. Timestamps passed to Tick
// should be monotonically non-decreasing seconds.
type Scheduler struct {
	seq *Sequence

	started bool
	epoch   float64
	active  int
}

// NewScheduler builds a sequence from trs and returns a scheduler for it.
func NewScheduler(trs []trajectory.Trajectory) (*Scheduler, error) {
	seq, err := NewSequence(trs)
	if err != nil {
		return nil, err
	}
	return seq.NewScheduler(), nil
}

// Sequence returns the trajectories being played.
func (s *Scheduler) Sequence() *Sequence { return s.seq }

// ActiveIndex is the trajectory the next tick will sample.
func (s *Scheduler) ActiveIndex() int { return s.active }

// Epoch returns the timestamp defining time zero of the current cycle and
// whether it has been set.
func (s *Scheduler) Epoch() (float64, bool) { return s.epoch, s.started }

// Started reports whether the epoch has been set by a first tick.
func (s *Scheduler) Started() bool { return s.started }

// State reports whether the first tick has happened.
func (s *Scheduler) State() State {
	if !s.started {
		return StateUnstarted
	}
	return StateRunning
}

// Reset returns the scheduler to the unstarted state at index 0.
func (s *Scheduler) Reset() {
	s.started = false
	s.epoch = 0
	s.active = 0
}

// Tick samples the active trajectory at time now and advances when that
// trajectory has run its full duration.
//
// The first tick defines the epoch. The offset is handed to Sample without
// clamping, so the tick that crosses a boundary samples slightly past the
// trajectory's end; the advance takes effect on the next tick. When the
// last trajectory completes the epoch restarts at now, dropping any
// overshoot instead of carrying it into the next cycle.
func (s *Scheduler) Tick(now float64) TickResult {
	if !s.started {
		s.epoch = now
		s.started = true
	}

	idx := s.active
	tr := s.seq.At(idx)
	offset := now - s.epoch - s.seq.PriorDuration(idx)

	res := TickResult{
		Index:       idx,
		Trajectory:  tr,
		LocalOffset: offset,
		Pose:        tr.Sample(offset),
	}

	if offset >= tr.Duration() {
		res.SegmentAdvanced = true
		s.active++
		if s.active >= s.seq.Len() {
			s.active = 0
			s.epoch = now
			res.CycleCompleted = true
		}
	}
	return res
}

// TotalDuration is a convenience for Sequence().TotalDuration().
func (s *Scheduler) TotalDuration() float64 { return s.seq.TotalDuration() }

// GlobalStart is a convenience for Sequence().GlobalStart().
func (s *Scheduler) GlobalStart() se2.Pose { return s.seq.GlobalStart() }

// GlobalEnd is a convenience for Sequence().GlobalEnd().
func (s *Scheduler) GlobalEnd() se2.Pose { return s.seq.GlobalEnd() }
