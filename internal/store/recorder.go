package store

import (
	"context"
	"fmt"

	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
)

// DefaultBatchSize is how many frames a Recorder buffers before writing.
const DefaultBatchSize = 100

// Recorder is a playback.Renderer that persists frames to a session.
type Recorder struct {
	ctx       context.Context
	store     *Store
	session   Session
	batchSize int
	every     uint64

	pending  []FrameRecord
	recorded int
}

// NewRecorder creates a session for seq and returns a recorder bound to it.
// Writes ignore cancellation of ctx so a stopped playback still flushes.
func NewRecorder(ctx context.Context, s *Store, name, plan string, seq *playback.Sequence, every uint64) (*Recorder, error) {
	sess, err := s.CreateSession(ctx, name, plan, seq)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("[store] recording session %s (%s) to %s", sess.ID, name, s.Path())
	return &Recorder{
		ctx:       context.WithoutCancel(ctx),
		store:     s,
		session:   sess,
		batchSize: DefaultBatchSize,
		every:     every,
	}, nil
}

// Session returns the session being recorded.
func (r *Recorder) Session() Session { return r.session }

// Recorded returns the number of frames written so far.
func (r *Recorder) Recorded() int { return r.recorded }

// Render implements playback.Renderer.
func (r *Recorder) Render(f playback.Frame) error {
	if r.every > 1 && f.Seq%r.every != 0 && !f.SegmentAdvanced {
		return nil
	}
	r.pending = append(r.pending, NewFrameRecord(f))
	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes buffered frames.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.RecordFrames(r.ctx, r.session.ID, r.pending); err != nil {
		return fmt.Errorf("session %s: %w", r.session.ID, err)
	}
	r.recorded += len(r.pending)
	r.pending = r.pending[:0]
	return nil
}
