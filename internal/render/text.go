// Package render holds the collaborators that turn playback frames into
// something a person can look at: a text matrix panel, PNG field snapshots
// and an HTML timeline.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/se2"
)

// Panel titles, in drawing order.
const (
	PanelStart          = "Start"
	PanelEnd            = "End"
	PanelCurrent        = "Interpolation (Current)"
	PanelStartToCurrent = "disp(Start,Current)"
	PanelCurrentToEnd   = "disp(Current,End)"
)

// TextRenderer prints the status line and the five matrix panels for each
// frame it is asked to render.
type TextRenderer struct {
	w     io.Writer
	every uint64
}

// NewTextRenderer writes to w. When every is greater than one only frames
// whose sequence number is a multiple of every are printed.
func NewTextRenderer(w io.Writer, every uint64) *TextRenderer {
	return &TextRenderer{w: w, every: every}
}

// Render implements playback.Renderer.
func (r *TextRenderer) Render(f playback.Frame) error {
	if r.every > 1 && f.Seq%r.every != 0 {
		return nil
	}
	_, err := io.WriteString(r.w, FormatFrame(f))
	return err
}

// StatusLine is the one-line summary shown as the window title.
func StatusLine(f playback.Frame) string {
	return fmt.Sprintf("Profile duration : %s - time in profile %s", fixed(f.Duration), fixed(f.LocalOffset))
}

// FormatFrame renders the header, status line and all panels.
func FormatFrame(f playback.Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] frame %d  t=%ss  segment %d/%d\n", f.Session, f.Seq, fixed(f.Now), f.Index+1, f.Segments)
	b.WriteString(StatusLine(f))
	b.WriteByte('\n')

	panels := []struct {
		title string
		pose  se2.Pose
	}{
		{PanelStart, f.Start},
		{PanelEnd, f.End},
		{PanelCurrent, f.Current},
		{PanelStartToCurrent, f.StartToCurrent},
		{PanelCurrentToEnd, f.CurrentToEnd},
	}
	for _, p := range panels {
		b.WriteString(FormatMatrix(p.title, p.pose))
	}
	return b.String()
}

// FormatMatrix prints the homogeneous transform of p with its title.
func FormatMatrix(title string, p se2.Pose) string {
	th, tx, ty := fixed(p.Heading), fixed(p.X), fixed(p.Y)
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "  cos(%s)  -sin(%s)  %s\n", th, th, tx)
	fmt.Fprintf(&b, "  sin(%s)   cos(%s)  %s\n", th, th, ty)
	b.WriteString("   0               0               1\n")
	return b.String()
}

// fixed formats v with two decimals and drops the sign from negative zero.
func fixed(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}
