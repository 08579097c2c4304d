package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathreplay/internal/fsutil"
	"github.com/banshee-data/pathreplay/internal/monitoring"
)

func TestChartRenderer_WriteHTML(t *testing.T) {
	frames := e2eFrames(t, e2eSequence(t), 0, 0.5, 1.0, 1.5)

	r := NewChartRenderer("", 0, 4)
	for _, f := range frames {
		require.NoError(t, r.Render(f))
	}
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []string{"0.00", "0.50", "1.00", "1.50"}, r.times)
	assert.Equal(t, 0.5, r.ys[3].Value)
	// Both segments are unit moves lasting one second.
	assert.Equal(t, []opts.LineData{{Value: 1.0}, {Value: 1.0}, {Value: 0.0}, {Value: 1.0}}, r.speeds)

	var buf bytes.Buffer
	require.NoError(t, r.WriteHTML(&buf))
	html := buf.String()
	assert.Contains(t, html, "Pose over time")
	assert.Contains(t, html, "Traced path")
	assert.Contains(t, html, "heading")
	assert.Contains(t, html, "speed")
}

func TestChartRenderer_Every(t *testing.T) {
	frames := e2eFrames(t, e2eSequence(t), 0, 0.1, 0.2, 0.3, 0.4, 0.5)

	r := NewChartRenderer("", 3, 4)
	for _, f := range frames {
		require.NoError(t, r.Render(f))
	}
	assert.Equal(t, 2, r.Len())
}

func TestChartRenderer_Flush(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	path := filepath.Join(t.TempDir(), "out", "timeline.html")
	r := NewChartRenderer(path, 0, 4)

	require.NoError(t, r.Flush(), "nothing collected yet")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	for _, f := range e2eFrames(t, e2eSequence(t), 0, 0.5) {
		require.NoError(t, r.Render(f))
	}
	require.NoError(t, r.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
	assert.Contains(t, string(data), "e2e")
}

func TestChartRenderer_FlushToFileSystem(t *testing.T) {
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	mem := fsutil.NewMemoryFileSystem()
	r := NewChartRenderer(filepath.Join("charts", "e2e.html"), 0, 4)
	r.SetFileSystem(mem)

	for _, f := range e2eFrames(t, e2eSequence(t), 0, 0.5) {
		require.NoError(t, r.Render(f))
	}
	require.NoError(t, r.Flush())

	data, err := mem.ReadFile(filepath.Join("charts", "e2e.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Traced path")
}
