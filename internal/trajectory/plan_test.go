package trajectory

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pathreplay/internal/se2"
	"github.com/banshee-data/pathreplay/internal/testutil"
)

func TestLoadPlan_YAML(t *testing.T) {
	plan, err := LoadPlan(filepath.Join("testdata", "square.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "square", plan.Name, "name defaults to file base name")
	require.Len(t, plan.Segments, 4)

	trs, err := plan.Build()
	require.NoError(t, err)
	require.Len(t, trs, 4)

	assert.IsType(t, &Linear{}, trs[0])
	assert.IsType(t, &Linear{}, trs[1])
	assert.IsType(t, &Wait{}, trs[2])
	assert.IsType(t, &Profiled{}, trs[3])

	// Each segment starts where the previous one ended.
	for i := 1; i < len(trs); i++ {
		testutil.AssertPoseNear(t, trs[i].Start(), trs[i-1].End(), 1e-12)
	}
	testutil.AssertPoseNear(t, trs[1].Sample(0.5), se2.NewPose(1, 0.5, math.Pi/4), 1e-12)

	// Profiled segment falls back to plan-level limits (triangular, 2s).
	assert.InDelta(t, 2.0, trs[3].Duration(), 1e-12)
	assert.InDelta(t, 4.5, TotalDuration(trs), 1e-12)
}

func TestLoadPlan_JSON(t *testing.T) {
	plan, err := LoadPlan(filepath.Join("testdata", "square.json"))
	require.NoError(t, err)
	assert.Equal(t, "square-json", plan.Name)

	trs, err := plan.Build()
	require.NoError(t, err)
	require.Len(t, trs, 2)
	assert.Equal(t, se2.NewPose(5, 5, 0), trs[1].Start(), "explicit start overrides previous end")
}

func TestLoadPlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"wrong extension", "plan.txt"},
		{"missing file", "does-not-exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(filepath.Join("testdata", tt.file))
			assert.Error(t, err)
		})
	}
}

func TestPlanBuild_Errors(t *testing.T) {
	plan, err := LoadPlan(filepath.Join("testdata", "unknown_kind.yaml"))
	require.NoError(t, err)
	_, err = plan.Build()
	assert.ErrorIs(t, err, ErrUnknownSegmentKind)

	plan, err = LoadPlan(filepath.Join("testdata", "empty.yaml"))
	require.NoError(t, err)
	_, err = plan.Build()
	assert.ErrorIs(t, err, ErrEmptyPlan)

	missingEnd := &Plan{Segments: []Segment{{Kind: KindLinear, Duration: 1}}}
	_, err = missingEnd.Build()
	assert.ErrorIs(t, err, ErrMissingEnd)

	noLimits := &Plan{Segments: []Segment{{Kind: KindProfiled, End: &se2.Pose{X: 1}}}}
	_, err = noLimits.Build()
	assert.ErrorIs(t, err, ErrInvalidProfile)

	badWait := &Plan{Segments: []Segment{{Kind: KindWait, Duration: -1}}}
	_, err = badWait.Build()
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Contains(t, err.Error(), "segment 0")
}

func TestPlanBuild_RawHeading(t *testing.T) {
	data := []byte(`name: turn
start: {x: 0, y: 0, heading: 3}
segments:
  - kind: linear
    end: {x: 0, y: 0, heading: -3}
    duration: 1
  - kind: linear
    end: {x: 0, y: 0, heading: 3}
    duration: 1
    raw_heading: true
`)
	plan, err := ParsePlan(data, "yaml")
	require.NoError(t, err)
	trs, err := plan.Build()
	require.NoError(t, err)
	require.Len(t, trs, 2)

	assert.InDelta(t, math.Pi, trs[0].Sample(0.5).Heading, 1e-9)
	assert.InDelta(t, 0.0, trs[1].Sample(0.5).Heading, 1e-9)
}

func TestParsePlan_RejectsUnknownFields(t *testing.T) {
	_, err := ParsePlan([]byte("segments:\n  - kind: wait\n    duraton: 1\n"), "yaml")
	assert.Error(t, err)

	_, err = ParsePlan([]byte(`{"segments": [{"kind": "wait", "duraton": 1}]}`), "json")
	assert.Error(t, err)

	_, err = ParsePlan([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestDemoPlan(t *testing.T) {
	plan := DemoPlan()
	assert.Equal(t, "demo", plan.Name)

	trs, err := plan.Build()
	require.NoError(t, err)
	require.Len(t, trs, 6)
	assert.InDelta(t, 11.0, TotalDuration(trs), 1e-9)

	for i := 1; i < len(trs); i++ {
		testutil.AssertPoseNear(t, trs[i].Start(), trs[i-1].End(), 1e-12)
	}
}
