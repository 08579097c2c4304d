package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/timeutil"
)

// DefaultInterval is the render cadence used when DriverConfig.Interval is zero.
const DefaultInterval = 10 * time.Millisecond

// DriverConfig configures a Driver.
type DriverConfig struct {
	Name      string        // session name copied into every frame
	Interval  time.Duration // time between ticks
	MaxFrames uint64        // stop after this many frames; 0 = unlimited
	MaxCycles int           // stop after this many full cycles; 0 = unlimited
}

// Driver ticks a Scheduler from a clock and hands each frame to its
// renderers. It plays the role of the external render loop.
type Driver struct {
	sched     *Scheduler
	cfg       DriverConfig
	clock     timeutil.Clock
	watch     *timeutil.Stopwatch
	renderers []Renderer

	frames uint64
	cycles int
}

// NewDriver creates a driver. Timestamps are seconds since the driver was
// created, read from clock.
func NewDriver(sched *Scheduler, cfg DriverConfig, clock timeutil.Clock, renderers ...Renderer) *Driver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Driver{
		sched:     sched,
		cfg:       cfg,
		clock:     clock,
		watch:     timeutil.NewStopwatch(clock),
		renderers: renderers,
	}
}

// Frames returns the number of frames rendered so far.
func (d *Driver) Frames() uint64 { return d.frames }

// Cycles returns the number of completed playback cycles.
func (d *Driver) Cycles() int { return d.cycles }

// Done reports whether a configured stop condition has been reached.
func (d *Driver) Done() bool {
	if d.cfg.MaxFrames > 0 && d.frames >= d.cfg.MaxFrames {
		return true
	}
	return d.cfg.MaxCycles > 0 && d.cycles >= d.cfg.MaxCycles
}

// Step ticks the scheduler at clock time now and renders the frame.
func (d *Driver) Step(now time.Time) (Frame, error) {
	secs := d.watch.SecondsAt(now)
	tick := d.sched.Tick(secs)

	frame, err := BuildFrame(d.sched.Sequence(), tick, secs)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", d.frames+1, err)
	}
	d.frames++
	frame.Seq = d.frames
	frame.Session = d.cfg.Name

	if tick.SegmentAdvanced {
		monitoring.Debugf("[playback] %s: segment %d done at %.3fs (offset %.3f of %.3f), next %d",
			d.cfg.Name, tick.Index, secs, tick.LocalOffset, frame.Duration, d.sched.ActiveIndex())
	}
	if tick.CycleCompleted {
		d.cycles++
		epoch, _ := d.sched.Epoch()
		monitoring.Logf("[playback] %s: cycle %d complete, epoch now %.2fs", d.cfg.Name, d.cycles, epoch)
	}

	for _, r := range d.renderers {
		if err := r.Render(frame); err != nil {
			return frame, fmt.Errorf("render frame %d with %T: %w", frame.Seq, r, err)
		}
	}
	return frame, nil
}

// Run ticks at the configured interval until ctx is done or a stop
// condition is reached, then flushes renderers. It returns ctx.Err() when
// cancelled.
func (d *Driver) Run(ctx context.Context) (err error) {
	seq := d.sched.Sequence()
	monitoring.Logf("[playback] %s: %d trajectories, duration %.2f s, tick %v",
		d.cfg.Name, seq.Len(), seq.TotalDuration(), d.cfg.Interval)

	ticker := d.clock.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	defer func() {
		err = errors.Join(err, d.flush())
	}()

	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("[playback] %s: stopped after %d frames", d.cfg.Name, d.frames)
			return ctx.Err()
		case now := <-ticker.C():
			if _, err := d.Step(now); err != nil {
				return err
			}
			if d.Done() {
				monitoring.Logf("[playback] %s: finished after %d frames, %d cycles", d.cfg.Name, d.frames, d.cycles)
				return nil
			}
		}
	}
}

func (d *Driver) flush() error {
	var errs []error
	for _, r := range d.renderers {
		f, ok := r.(Flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush %T: %w", r, err))
		}
	}
	return errors.Join(errs...)
}
