package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/se2"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	s, err := Open(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSequence(t *testing.T) *playback.Sequence {
	t.Helper()
	a, err := trajectory.NewLinear(se2.NewPose(0, 0, 0), se2.NewPose(1, 0, 0), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := trajectory.NewLinear(se2.NewPose(1, 0, 0), se2.NewPose(1, 1, math.Pi/2), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	seq, err := playback.NewSequence([]trajectory.Trajectory{a, b})
	if err != nil {
		t.Fatal(err)
	}
	return seq
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := setupTestStore(t)

	version, dirty, err := s.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("version = %d dirty = %v, want 2 clean", version, dirty)
	}

	// Running again is a no-op.
	if err := s.MigrateUp(); err != nil {
		t.Errorf("second MigrateUp failed: %v", err)
	}
}

func TestOpenUnmigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.db")
	s, err := OpenUnmigrated(path)
	if err != nil {
		t.Fatalf("OpenUnmigrated failed: %v", err)
	}
	defer s.Close()

	version, dirty, err := s.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("version = %d dirty = %v, want 0 clean", version, dirty)
	}
	if err := s.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if version, _, _ = s.MigrateVersion(); version != 2 {
		t.Errorf("version after up = %d, want 2", version)
	}
}

func TestMigrateDown(t *testing.T) {
	s := setupTestStore(t)

	if err := s.MigrateDown(); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}
	version, _, err := s.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("version after down = %d, want 1", version)
	}

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&name)
	if err == nil {
		t.Error("frames table still exists after rolling back")
	}
}

func TestCreateSessionAndRecordFrames(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seq := testSequence(t)

	sess, err := s.CreateSession(ctx, "e2e", "e2e.yaml", seq)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session has no ID")
	}

	frames := []FrameRecord{
		{Seq: 1, Now: 0, Pose: se2.NewPose(0, 0, 0)},
		{Seq: 2, Now: 1.0, Index: 0, LocalOffset: 1.0, Pose: se2.NewPose(1, 0, 0), SegmentAdvanced: true},
		{Seq: 3, Now: 1.5, Index: 1, LocalOffset: 0.5, Pose: se2.NewPose(1, 0.5, math.Pi/4)},
	}
	if err := s.RecordFrames(ctx, sess.ID, frames); err != nil {
		t.Fatalf("RecordFrames failed: %v", err)
	}

	got, err := s.Frames(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(got) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(got), len(frames))
	}
	for i := range frames {
		if got[i] != frames[i] {
			t.Errorf("frame %d = %+v, want %+v", i, got[i], frames[i])
		}
	}

	loaded, err := s.Session(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if loaded.Frames != 3 || loaded.Segments != 2 || loaded.TotalDuration != 2.0 {
		t.Errorf("loaded session = %+v", loaded)
	}
	if !loaded.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", loaded.StartedAt, sess.StartedAt)
	}
}

func TestRecordFramesDuplicateSeqRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "dup", "", testSequence(t))
	if err != nil {
		t.Fatal(err)
	}
	err = s.RecordFrames(ctx, sess.ID, []FrameRecord{{Seq: 1}, {Seq: 1}})
	if err == nil {
		t.Fatal("expected primary key violation")
	}

	got, err := s.Frames(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d frames after rollback, want 0", len(got))
	}
}

func TestSessionNotFound(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.Session(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Session error = %v, want ErrSessionNotFound", err)
	}
	if _, err := s.Frames(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Frames error = %v, want ErrSessionNotFound", err)
	}
}

func TestListSessions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	seq := testSequence(t)

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Fatalf("fresh store has %d sessions", len(sessions))
	}

	first, _ := s.CreateSession(ctx, "left", "", seq)
	second, _ := s.CreateSession(ctx, "right", "", seq)
	if err := s.RecordFrames(ctx, second.ID, []FrameRecord{{Seq: 1}}); err != nil {
		t.Fatal(err)
	}

	sessions, err = s.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("sessions not most recent first: %s, %s", sessions[0].Name, sessions[1].Name)
	}
	if sessions[0].Frames != 1 || sessions[1].Frames != 0 {
		t.Errorf("frame counts = %d, %d; want 1, 0", sessions[0].Frames, sessions[1].Frames)
	}
}

func TestRecorder(t *testing.T) {
	s := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	seq := testSequence(t)

	rec, err := NewRecorder(ctx, s, "e2e", "plan.yaml", seq, 0)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	rec.batchSize = 2

	sched := seq.NewScheduler()
	for i, now := range []float64{0, 0.5, 1.0, 1.5, 2.0} {
		f, err := playback.BuildFrame(seq, sched.Tick(now), now)
		if err != nil {
			t.Fatal(err)
		}
		f.Seq = uint64(i + 1)
		if err := rec.Render(f); err != nil {
			t.Fatalf("Render %d failed: %v", i, err)
		}
	}
	if rec.Recorded() != 4 {
		t.Errorf("Recorded() = %d before flush, want 4", rec.Recorded())
	}

	// A cancelled playback context must not lose the tail.
	cancel()
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	frames, err := s.Frames(context.Background(), rec.Session().ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(frames))
	}
	if frames[3].Index != 1 || math.Abs(frames[3].Pose.Y-0.5) > 1e-9 {
		t.Errorf("frame 4 = %+v, want segment 1 at y=0.5", frames[3])
	}
	if !frames[4].CycleCompleted {
		t.Error("last frame should complete the cycle")
	}
}

func TestRecorderEveryKeepsBoundaries(t *testing.T) {
	s := setupTestStore(t)
	seq := testSequence(t)

	rec, err := NewRecorder(context.Background(), s, "sparse", "", seq, 10)
	if err != nil {
		t.Fatal(err)
	}

	sched := seq.NewScheduler()
	for i, now := range []float64{0, 0.5, 1.0, 1.5} {
		f, err := playback.BuildFrame(seq, sched.Tick(now), now)
		if err != nil {
			t.Fatal(err)
		}
		f.Seq = uint64(i + 1)
		if err := rec.Render(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Flush(); err != nil {
		t.Fatal(err)
	}

	frames, err := s.Frames(context.Background(), rec.Session().ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 || !frames[0].SegmentAdvanced {
		t.Errorf("got %+v, want only the segment boundary frame", frames)
	}
}
