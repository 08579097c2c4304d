package render

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/pathreplay/internal/fsutil"
	"github.com/banshee-data/pathreplay/internal/monitoring"
	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/se2"
	"github.com/banshee-data/pathreplay/internal/security"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

var (
	endBoxColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 128}
	robotColor    = color.NRGBA{R: 0, G: 120, B: 255, A: 217}
	headingColor  = color.NRGBA{R: 255, G: 200, B: 0, A: 255}
	trailColor    = color.NRGBA{R: 0, G: 200, B: 120, A: 255}
	boxEdgeColor  = color.Black
	defaultRobot  = 18.0 // robot side length in field units
	maxTrailCount = 4096
)

// PlotConfig sizes the field snapshot.
type PlotConfig struct {
	FieldSize  float64   // side of the square field, centred on the origin
	RobotSize  float64   // side of the robot box; 0 uses 18
	SampleStep float64   // seconds between drawn path samples
	Size       vg.Length // image side; 0 uses 6 inches
	OutputDir  string    // where Flush and periodic saves write PNGs
	Every      uint64    // also save every N frames; 0 saves only on Flush

	FS fsutil.FileSystem // nil writes to the OS filesystem
}

// PlotRenderer draws the field view: every trajectory's sampled path, the
// start and end boxes, and the robot with its heading vector.
type PlotRenderer struct {
	cfg   PlotConfig
	paths []plotter.XYs

	trail plotter.XYs
	last  playback.Frame
	have  bool
	saved []string
}

// NewPlotRenderer samples the paths of seq once up front.
func NewPlotRenderer(seq *playback.Sequence, cfg PlotConfig) *PlotRenderer {
	if cfg.RobotSize <= 0 {
		cfg.RobotSize = defaultRobot
	}
	if cfg.Size <= 0 {
		cfg.Size = 6 * vg.Inch
	}
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}

	paths := make([]plotter.XYs, 0, seq.Len())
	for _, tr := range seq.Trajectories() {
		paths = append(paths, poseXYs(trajectory.SamplePath(tr, cfg.SampleStep)))
	}
	return &PlotRenderer{cfg: cfg, paths: paths}
}

// Render implements playback.Renderer.
func (r *PlotRenderer) Render(f playback.Frame) error {
	if f.CycleCompleted || len(r.trail) >= maxTrailCount {
		r.trail = r.trail[:0]
	}
	r.trail = append(r.trail, plotter.XY{X: f.Current.X, Y: f.Current.Y})
	r.last = f
	r.have = true

	if r.cfg.Every > 0 && f.Seq%r.cfg.Every == 0 {
		return r.save(f)
	}
	return nil
}

// Flush writes the last rendered frame.
func (r *PlotRenderer) Flush() error {
	if !r.have {
		return nil
	}
	return r.save(r.last)
}

// Saved lists the files written so far.
func (r *PlotRenderer) Saved() []string {
	return append([]string(nil), r.saved...)
}

// Plot builds the field view for f.
func (r *PlotRenderer) Plot(f playback.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = StatusLine(f)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	half := r.cfg.FieldSize / 2
	if half > 0 {
		p.X.Min, p.X.Max = -half, half
		p.Y.Min, p.Y.Max = -half, half
	}
	p.Add(plotter.NewGrid())

	colors := generateColors(len(r.paths))
	for i, xys := range r.paths {
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("segment %d", i+1), line)
	}

	if len(r.trail) > 1 {
		trail, err := plotter.NewLine(r.trail)
		if err != nil {
			return nil, fmt.Errorf("trail: %w", err)
		}
		trail.Color = trailColor
		trail.Width = vg.Points(0.5)
		trail.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(trail)
	}

	for _, box := range []struct {
		pose se2.Pose
		fill color.Color
	}{
		{f.Start, endBoxColor},
		{f.End, endBoxColor},
		{f.Current, robotColor},
	} {
		poly, err := plotter.NewPolygon(robotBox(box.pose, r.cfg.RobotSize))
		if err != nil {
			return nil, fmt.Errorf("robot box: %w", err)
		}
		poly.Color = box.fill
		poly.LineStyle.Color = boxEdgeColor
		poly.LineStyle.Width = vg.Points(1)
		p.Add(poly)
	}

	tip := r2.Add(f.Current.Position(), r2.Scale(r.cfg.RobotSize, f.Current.HeadingVec()))
	vec, err := plotter.NewLine(plotter.XYs{
		{X: f.Current.X, Y: f.Current.Y},
		{X: tip.X, Y: tip.Y},
	})
	if err != nil {
		return nil, fmt.Errorf("heading vector: %w", err)
	}
	vec.Color = headingColor
	vec.Width = vg.Points(2)
	p.Add(vec)

	return p, nil
}

// WritePNG encodes p as a square PNG of the given side length.
func WritePNG(w io.Writer, p *plot.Plot, size vg.Length) error {
	wt, err := p.WriterTo(size, size, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// WriteFramePNG draws f and writes it to w.
func (r *PlotRenderer) WriteFramePNG(w io.Writer, f playback.Frame) error {
	p, err := r.Plot(f)
	if err != nil {
		return err
	}
	return WritePNG(w, p, r.cfg.Size)
}

func (r *PlotRenderer) save(f playback.Frame) error {
	var buf bytes.Buffer
	if err := r.WriteFramePNG(&buf, f); err != nil {
		return err
	}

	name := fmt.Sprintf("%s_frame_%06d.png", security.SanitizeFilename(f.Session), f.Seq)
	file, err := security.JoinWithinDirectory(r.cfg.OutputDir, name)
	if err != nil {
		return err
	}
	if err := r.cfg.FS.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	if err := r.cfg.FS.WriteFile(file, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	r.saved = append(r.saved, file)
	monitoring.Debugf("[render] wrote %s", file)
	return nil
}

// robotBox returns the corners of a square of side size centred on p and
// rotated to its heading.
func robotBox(p se2.Pose, size float64) plotter.XYs {
	h := size / 2
	corners := []se2.Pose{{X: h, Y: h}, {X: -h, Y: h}, {X: -h, Y: -h}, {X: h, Y: -h}}
	xys := make(plotter.XYs, len(corners))
	for i, c := range corners {
		// Each corner is an offset in the robot's own frame.
		w := se2.Compose(p, c)
		xys[i] = plotter.XY{X: w.X, Y: w.Y}
	}
	return xys
}

func poseXYs(poses []se2.Pose) plotter.XYs {
	xys := make(plotter.XYs, len(poses))
	for i, p := range poses {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// generateColors returns n distinct colors spread around the hue wheel.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
