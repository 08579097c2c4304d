package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/banshee-data/pathreplay/internal/playback"
	"github.com/banshee-data/pathreplay/internal/trajectory"
)

// loadedPlan is a plan built into a playable sequence.
type loadedPlan struct {
	Name   string
	Source string // file path, or "demo"
	Seq    *playback.Sequence
}

// loadPlans reads and builds every plan file. With no paths the embedded
// demo plan is used. Session names are made unique by suffixing duplicates.
func loadPlans(paths []string) ([]loadedPlan, error) {
	type source struct {
		plan *trajectory.Plan
		path string
	}

	var sources []source
	if len(paths) == 0 {
		sources = append(sources, source{trajectory.DemoPlan(), "demo"})
	}
	for _, path := range paths {
		plan, err := trajectory.LoadPlan(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source{plan, path})
	}

	taken := make(map[string]bool, len(sources))
	for _, src := range sources {
		taken[src.plan.Name] = true
	}
	used := make(map[string]bool, len(sources))

	plans := make([]loadedPlan, 0, len(sources))
	for _, src := range sources {
		trs, err := src.plan.Build()
		if err != nil {
			return nil, err
		}
		seq, err := playback.NewSequence(trs)
		if err != nil {
			return nil, fmt.Errorf("plan %q: %w", src.plan.Name, err)
		}

		name := src.plan.Name
		// A suffixed name must not collide with a plan that has that name.
		for n := 2; used[name] || (name != src.plan.Name && taken[name]); n++ {
			name = fmt.Sprintf("%s-%d", src.plan.Name, n)
		}
		used[name] = true

		plans = append(plans, loadedPlan{Name: name, Source: src.path, Seq: seq})
	}
	return plans, nil
}

// lockedWriter serialises writes from concurrently running sessions.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
