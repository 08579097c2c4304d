package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/render"
	"github.com/banshee-data/pathreplay/internal/security"
	"github.com/banshee-data/pathreplay/internal/store"
	"github.com/banshee-data/pathreplay/internal/timeutil"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Plans      []string
	For        time.Duration
	Cycles     int
	MaxFrames  uint64
	Database   string
	HTML       string
	Quiet      bool
	PrintEvery uint64
	PlotEvery  uint64
	NoPlot     bool

	// Clock drives the sessions; nil uses the wall clock.
	Clock timeutil.Clock
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts, Cycles: -1}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one or more plans in a loop",
		Long: `Play each plan in its own session. Sessions run side by side, each with
its own scheduler, until interrupted, until --for elapses, or until every
session has completed --cycles cycles.

Examples:
  pathreplay play
  pathreplay play --plan left.yaml --plan right.yaml --cycles 2
  pathreplay play --plan square.yaml --for 10s --db replay.db --html square.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Plans, "plan", nil, "plan file (.yaml or .json); repeat for side-by-side sessions")
	cmd.Flags().DurationVar(&opts.For, "for", 0, "stop after this long (0 = until interrupted)")
	cmd.Flags().IntVar(&opts.Cycles, "cycles", -1, "stop each session after N cycles (-1 = from config)")
	cmd.Flags().Uint64Var(&opts.MaxFrames, "frames", 0, "stop each session after N frames (0 = unlimited)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record sessions to this SQLite file (overrides config)")
	cmd.Flags().StringVar(&opts.HTML, "html", "", "write an HTML timeline to this file on stop")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not print matrix panels")
	cmd.Flags().Uint64Var(&opts.PrintEvery, "print-every", 50, "print panels every N frames")
	cmd.Flags().Uint64Var(&opts.PlotEvery, "plot-every", 0, "also save a PNG every N frames")
	cmd.Flags().BoolVar(&opts.NoPlot, "no-plot", false, "do not write PNG snapshots")

	return cmd
}

func runPlay(ctx context.Context, opts *PlayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.viewerConfig()

	plans, err := loadPlans(opts.Plans)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.For)
		defer cancel()
	}

	dbPath := cfg.GetDatabase()
	if opts.Database != "" {
		dbPath = opts.Database
	}
	var st *store.Store
	if dbPath != "" {
		st, err = store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	cycles := cfg.GetMaxCycles()
	if opts.Cycles >= 0 {
		cycles = opts.Cycles
	}

	out := &lockedWriter{w: cmd.OutOrStdout()}
	for _, p := range plans {
		fmt.Fprintf(out, "%s: duration %.2f\n", p.Name, p.Seq.TotalDuration())
	}

	g, gctx := errgroup.WithContext(ctx)
	sessions, err := opts.prepareSessions(gctx, plans, cycles, st, out)
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		sess := sess
		g.Go(func() error {
			err := sess.driver.Run(gctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("session %s: %w", sess.name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	monitoring.Logf("[playback] %d session(s) stopped", len(plans))
	return nil
}

type session struct {
	name   string
	driver *playback.Driver
}

// prepareSessions builds a driver per plan. Nothing runs until every
// session is ready, so a failure leaves no driver writing to the store.
func (opts *PlayOptions) prepareSessions(ctx context.Context, plans []loadedPlan, cycles int, st *store.Store, out *lockedWriter) ([]session, error) {
	cfg := opts.viewerConfig()
	sessions := make([]session, 0, len(plans))
	for _, p := range plans {
		renderers, err := opts.renderers(ctx, p, len(plans), st, out)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", p.Name, err)
		}
		driver := playback.NewDriver(p.Seq.NewScheduler(), playback.DriverConfig{
			Name:      p.Name,
			Interval:  cfg.GetTickInterval(),
			MaxFrames: opts.MaxFrames,
			MaxCycles: cycles,
		}, opts.Clock, renderers...)
		sessions = append(sessions, session{name: p.Name, driver: driver})
	}
	return sessions, nil
}

// renderers assembles the collaborators for one session.
func (opts *PlayOptions) renderers(ctx context.Context, p loadedPlan, sessions int, st *store.Store, out *lockedWriter) ([]playback.Renderer, error) {
	cfg := opts.viewerConfig()
	var rs []playback.Renderer

	if !opts.Quiet {
		rs = append(rs, render.NewTextRenderer(out, opts.PrintEvery))
	}
	if !opts.NoPlot {
		rs = append(rs, render.NewPlotRenderer(p.Seq, render.PlotConfig{
			FieldSize:  cfg.GetFieldSize(),
			SampleStep: cfg.GetPathSampleStep(),
			Size:       vg.Length(cfg.GetPlotSizeInches()) * vg.Inch,
			OutputDir:  cfg.GetOutputDir(),
			Every:      opts.PlotEvery,
		}))
	}
	if opts.HTML != "" {
		path := opts.HTML
		if sessions > 1 {
			ext := filepath.Ext(path)
			path = strings.TrimSuffix(path, ext) + "_" + security.SanitizeFilename(p.Name) + ext
		}
		rs = append(rs, render.NewChartRenderer(path, 0, cfg.GetFieldSize()))
	}
	if st != nil {
		rec, err := store.NewRecorder(ctx, st, p.Name, p.Source, p.Seq, 0)
		if err != nil {
			return nil, err
		}
		rs = append(rs, rec)
	}
	return rs, nil
}
