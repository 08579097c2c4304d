package playback

import (
	"fmt"

	"github.com/banshee-data/pathreplay/internal/se2"
)

// Frame is everything a renderer needs to draw one tick: the sampled pose,
// the global reference poses and the relative transforms between them.
type Frame struct {
	TickResult

	Session string  // name of the playback session
	Seq     uint64  // 1-based frame counter within the session
	Now     float64 // timestamp passed to Tick, seconds

	Segments      int     // number of trajectories in the sequence
	Duration      float64 // duration of the sampled trajectory
	TotalDuration float64 // duration of a full cycle

	Start   se2.Pose // global start pose
	End     se2.Pose // global end pose
	Current se2.Pose // sampled pose

	StartToCurrent se2.Pose // Current in Start's frame
	CurrentToEnd   se2.Pose // End in Current's frame
}

// BuildFrame derives the per-tick view from a scheduler result.
func BuildFrame(seq *Sequence, tick TickResult, now float64) (Frame, error) {
	start, end := seq.GlobalStart(), seq.GlobalEnd()

	startToCurrent, err := se2.Displacement(start, tick.Pose)
	if err != nil {
		return Frame{}, fmt.Errorf("start to current: %w", err)
	}
	currentToEnd, err := se2.Displacement(tick.Pose, end)
	if err != nil {
		return Frame{}, fmt.Errorf("current to end: %w", err)
	}

	return Frame{
		TickResult:     tick,
		Now:            now,
		Segments:       seq.Len(),
		Duration:       tick.Trajectory.Duration(),
		TotalDuration:  seq.TotalDuration(),
		Start:          start,
		End:            end,
		Current:        tick.Pose,
		StartToCurrent: startToCurrent,
		CurrentToEnd:   currentToEnd,
	}, nil
}

// Renderer draws frames. Implementations live outside this package.
type Renderer interface {
	Render(f Frame) error
}

// Flusher is implemented by renderers that produce output when playback
// stops.
type Flusher interface {
	Flush() error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame) error

// Render calls fn(f).
func (fn RendererFunc) Render(f Frame) error { return fn(f) }
