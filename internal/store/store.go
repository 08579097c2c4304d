// Package store records playback sessions and their frames in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/se2"
)

// timeLayout is fixed width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSessionNotFound is returned when a session ID has no row.
var ErrSessionNotFound = errors.New("store: session not found")

// Store wraps the recording database.
type Store struct {
	db   *sql.DB
	path string
}

// Session is one recorded playback run.
type Session struct {
	ID            string
	Name          string
	Plan          string
	Segments      int
	TotalDuration float64
	StartedAt     time.Time
	Frames        int
}

// FrameRecord is the persisted subset of a playback.Frame.
type FrameRecord struct {
	Seq             uint64
	Now             float64
	Index           int
	LocalOffset     float64
	Pose            se2.Pose
	SegmentAdvanced bool
	CycleCompleted  bool
}

// Open opens (creating if needed) the database at path and applies
// migrations. Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	s, err := OpenUnmigrated(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.db.Close()
		return nil, err
	}
	monitoring.Debugf("[store] opened %s", path)
	return s, nil
}

// OpenUnmigrated opens the database at path without touching its schema,
// for the migrate command.
func OpenUnmigrated(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows one writer; sessions running side by side share this
	// connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path the store was opened with.
func (s *Store) Path() string { return s.path }

// CreateSession inserts a new session row for seq and returns it.
func (s *Store) CreateSession(ctx context.Context, name, plan string, seq *playback.Sequence) (Session, error) {
	sess := Session{
		ID:            uuid.NewString(),
		Name:          name,
		Plan:          plan,
		Segments:      seq.Len(),
		TotalDuration: seq.TotalDuration(),
		StartedAt:     time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, name, plan, segments, total_duration, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Plan, sess.Segments, sess.TotalDuration, sess.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session %q: %w", name, err)
	}
	return sess, nil
}

// RecordFrames writes frames for a session in one transaction.
func (s *Store) RecordFrames(ctx context.Context, sessionID string, frames []FrameRecord) (err error) {
	if len(frames) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frames (session_id, seq, now, segment_index, local_offset, x, y, heading, segment_advanced, cycle_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range frames {
		if _, err := stmt.ExecContext(ctx,
			sessionID, f.Seq, f.Now, f.Index, f.LocalOffset,
			f.Pose.X, f.Pose.Y, f.Pose.Heading,
			f.SegmentAdvanced, f.CycleCompleted,
		); err != nil {
			return fmt.Errorf("insert frame %d: %w", f.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListSessions returns every session, most recent first, with frame counts.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.session_id, s.name, s.plan, s.segments, s.total_duration, s.started_at,
		       (SELECT COUNT(*) FROM frames f WHERE f.session_id = s.session_id)
		FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Session returns one session by ID.
func (s *Store) Session(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.session_id, s.name, s.plan, s.segments, s.total_duration, s.started_at,
		       (SELECT COUNT(*) FROM frames f WHERE f.session_id = s.session_id)
		FROM sessions s
		WHERE s.session_id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return sess, err
}

// Frames returns the recorded frames of a session in sequence order.
func (s *Store) Frames(ctx context.Context, sessionID string) ([]FrameRecord, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, now, segment_index, local_offset, x, y, heading, segment_advanced, cycle_completed
		FROM frames
		WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRecord
	for rows.Next() {
		var f FrameRecord
		if err := rows.Scan(&f.Seq, &f.Now, &f.Index, &f.LocalOffset,
			&f.Pose.X, &f.Pose.Y, &f.Pose.Heading,
			&f.SegmentAdvanced, &f.CycleCompleted); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess    Session
		started string
	)
	if err := row.Scan(&sess.ID, &sess.Name, &sess.Plan, &sess.Segments, &sess.TotalDuration, &started, &sess.Frames); err != nil {
		return Session{}, err
	}
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Session{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	sess.StartedAt = t
	return sess, nil
}

// NewFrameRecord extracts the persisted fields from a frame.
func NewFrameRecord(f playback.Frame) FrameRecord {
	return FrameRecord{
		Seq:             f.Seq,
		Now:             f.Now,
		Index:           f.Index,
		LocalOffset:     f.LocalOffset,
		Pose:            f.Current,
		SegmentAdvanced: f.SegmentAdvanced,
		CycleCompleted:  f.CycleCompleted,
	}
}
