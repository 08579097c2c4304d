package render

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pathreplay/internal/fsutil"
	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

// ChartRenderer collects the sampled pose over time and writes an HTML page
// with a timeline of x, y, heading and speed plus the traced path.
type ChartRenderer struct {
	path      string
	every     uint64
	fieldSize float64
	fs        fsutil.FileSystem

	session string
	times   []string
	xs      []opts.LineData
	ys      []opts.LineData
	heads   []opts.LineData
	speeds  []opts.LineData
	trace   []opts.ScatterData
}

// NewChartRenderer writes to path on Flush. Only every Nth frame is kept
// when every is greater than one.
func NewChartRenderer(path string, every uint64, fieldSize float64) *ChartRenderer {
	return &ChartRenderer{path: path, every: every, fieldSize: fieldSize, fs: fsutil.OSFileSystem{}}
}

// SetFileSystem redirects Flush output to fsys.
func (r *ChartRenderer) SetFileSystem(fsys fsutil.FileSystem) { r.fs = fsys }

// Render implements playback.Renderer.
func (r *ChartRenderer) Render(f playback.Frame) error {
	if r.every > 1 && f.Seq%r.every != 0 {
		return nil
	}
	r.session = f.Session
	r.times = append(r.times, fixed(f.Now))
	r.xs = append(r.xs, opts.LineData{Value: f.Current.X})
	r.ys = append(r.ys, opts.LineData{Value: f.Current.Y})
	r.heads = append(r.heads, opts.LineData{Value: f.Current.Heading})
	r.speeds = append(r.speeds, opts.LineData{Value: trajectory.Speed(f.Trajectory, f.LocalOffset)})
	r.trace = append(r.trace, opts.ScatterData{Value: []interface{}{f.Current.X, f.Current.Y, f.Index}})
	return nil
}

// Len returns the number of samples collected.
func (r *ChartRenderer) Len() int { return len(r.times) }

// WriteHTML renders the page to w.
func (r *ChartRenderer) WriteHTML(w io.Writer) error {
	title := r.session
	if title == "" {
		title = "pathreplay"
	}

	timeline := charts.NewLine()
	timeline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pose over time", Subtitle: fmt.Sprintf("session=%s samples=%d", title, len(r.times))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
	)
	timeline.SetXAxis(r.times).
		AddSeries("x", r.xs).
		AddSeries("y", r.ys).
		AddSeries("heading", r.heads).
		AddSeries("speed", r.speeds)

	pad := r.fieldSize / 2
	path := charts.NewScatter()
	path.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Traced path", Subtitle: fmt.Sprintf("session=%s", title)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
	)
	path.AddSeries("robot", r.trace, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	page := components.NewPage()
	page.AddCharts(timeline, path)
	return page.Render(w)
}

// Flush writes the page to the configured path.
func (r *ChartRenderer) Flush() error {
	if r.path == "" || len(r.times) == 0 {
		return nil
	}

	var buf bytes.Buffer
	if err := r.WriteHTML(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	if err := r.fs.WriteFile(r.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	monitoring.Logf("[render] wrote %s (%d samples)", r.path, len(r.times))
	return nil
}
