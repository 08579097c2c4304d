package trajectory

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/pathreplay/internal/se2"
)

// Segment kinds understood by Plan.Build.
const (
	KindLinear   = "linear"
	KindProfiled = "profiled"
	KindWait     = "wait"
)

const maxPlanFileSize = 1 * 1024 * 1024 // 1MB

var (
	// ErrEmptyPlan is returned when a plan has no segments.
	ErrEmptyPlan = errors.New("trajectory: plan has no segments")
	// ErrUnknownSegmentKind is returned for an unrecognised segment kind.
	ErrUnknownSegmentKind = errors.New("trajectory: unknown segment kind")
	// ErrMissingEnd is returned when a moving segment has no end pose.
	ErrMissingEnd = errors.New("trajectory: segment has no end pose")
)

//go:embed demo.yaml
var demoPlanYAML []byte

// Plan is a declarative list of segments. Each segment starts where the
// previous one ended unless it sets its own start.
type Plan struct {
	Name  string   `json:"name" yaml:"name"`
	Start se2.Pose `json:"start" yaml:"start"`

	// Defaults for profiled segments that omit their own limits.
	MaxVel   float64 `json:"max_vel,omitempty" yaml:"max_vel,omitempty"`
	MaxAccel float64 `json:"max_accel,omitempty" yaml:"max_accel,omitempty"`

	Segments []Segment `json:"segments" yaml:"segments"`
}

// Segment describes one trajectory in a plan.
type Segment struct {
	Kind     string    `json:"kind" yaml:"kind"`
	Start    *se2.Pose `json:"start,omitempty" yaml:"start,omitempty"`
	End      *se2.Pose `json:"end,omitempty" yaml:"end,omitempty"`
	Duration float64   `json:"duration,omitempty" yaml:"duration,omitempty"`
	MaxVel   float64   `json:"max_vel,omitempty" yaml:"max_vel,omitempty"`
	MaxAccel float64   `json:"max_accel,omitempty" yaml:"max_accel,omitempty"`

	// RawHeading interpolates heading as authored instead of along the
	// shortest arc.
	RawHeading bool `json:"raw_heading,omitempty" yaml:"raw_heading,omitempty"`
}

// Build generates the trajectories described by the plan.
func (p *Plan) Build() ([]Trajectory, error) {
	if len(p.Segments) == 0 {
		return nil, fmt.Errorf("plan %q: %w", p.Name, ErrEmptyPlan)
	}

	cursor := p.Start
	out := make([]Trajectory, 0, len(p.Segments))
	for i, seg := range p.Segments {
		start := cursor
		if seg.Start != nil {
			start = *seg.Start
		}

		tr, err := p.buildSegment(seg, start)
		if err != nil {
			return nil, fmt.Errorf("plan %q segment %d (%s): %w", p.Name, i, seg.Kind, err)
		}
		out = append(out, tr)
		cursor = tr.End()
	}
	return out, nil
}

func (p *Plan) buildSegment(seg Segment, start se2.Pose) (Trajectory, error) {
	mode := ShortestArc
	if seg.RawHeading {
		mode = RawHeading
	}

	switch strings.ToLower(seg.Kind) {
	case KindLinear:
		if seg.End == nil {
			return nil, ErrMissingEnd
		}
		lin, err := NewLinear(start, *seg.End, seg.Duration)
		if err != nil {
			return nil, err
		}
		lin.SetHeadingMode(mode)
		return lin, nil
	case KindProfiled:
		if seg.End == nil {
			return nil, ErrMissingEnd
		}
		maxVel, maxAccel := seg.MaxVel, seg.MaxAccel
		if maxVel == 0 {
			maxVel = p.MaxVel
		}
		if maxAccel == 0 {
			maxAccel = p.MaxAccel
		}
		prof, err := NewProfiled(start, *seg.End, maxVel, maxAccel)
		if err != nil {
			return nil, err
		}
		prof.SetHeadingMode(mode)
		return prof, nil
	case KindWait:
		return NewWait(start, seg.Duration)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegmentKind, seg.Kind)
	}
}

// ParsePlan decodes a plan. format is "yaml" or "json".
func ParsePlan(data []byte, format string) (*Plan, error) {
	plan := &Plan{}
	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(plan); err != nil {
			return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
	return plan, nil
}

// LoadPlan reads a plan from a .yaml, .yml or .json file. The plan name
// defaults to the file's base name.
func LoadPlan(path string) (*Plan, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.TrimPrefix(filepath.Ext(cleanPath), ".")
	switch ext {
	case "yaml", "yml", "json":
	default:
		return nil, fmt.Errorf("plan file must have .yaml, .yml or .json extension, got %q", filepath.Ext(cleanPath))
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plan file: %w", err)
	}
	if fileInfo.Size() > maxPlanFileSize {
		return nil, fmt.Errorf("plan file too large: %d bytes (max %d)", fileInfo.Size(), maxPlanFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	plan, err := ParsePlan(data, ext)
	if err != nil {
		return nil, err
	}
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(cleanPath), filepath.Ext(cleanPath))
	}
	return plan, nil
}

// DemoPlan returns the built-in demonstration plan.
func DemoPlan() *Plan {
	plan, err := ParsePlan(demoPlanYAML, "yaml")
	if err != nil {
		panic("embedded demo plan is invalid: " + err.Error())
	}
	return plan
}
