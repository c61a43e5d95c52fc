package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/vsrbench/internal/dynamo"
	"github.com/san-kum/vsrbench/internal/sim"
)

const (
	EpisodeLocomotion = "locomotion"
	EpisodeCantilever = "cantilever"
)

// Outcome is what a trial contributes to the sweep: ordered numeric fields
// and, for some episodes, a per-step series.
type Outcome struct {
	Fields    []dynamo.Field
	Evolution *dynamo.Series
}

// Runner executes one trial. obs may be nil.
type Runner func(ctx context.Context, t Trial, obs dynamo.Observer) (Outcome, error)

type Registry struct {
	episodes map[string]Runner
}

// NewRegistry registers the built-in episodes. Their parameters come from loc
// and cant; physics settings always come from the trial.
func NewRegistry(loc sim.Locomotion, cant sim.Cantilever, logger *slog.Logger) *Registry {
	r := &Registry{episodes: make(map[string]Runner)}

	r.episodes[EpisodeLocomotion] = func(ctx context.Context, t Trial, obs dynamo.Observer) (Outcome, error) {
		ep := loc
		ep.Settings = t.Settings
		ep.Logger = logger
		res, err := ep.Run(ctx, t.Description(), obs)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Fields: res.Fields()}, nil
	}
	r.episodes[EpisodeCantilever] = func(ctx context.Context, t Trial, obs dynamo.Observer) (Outcome, error) {
		ep := cant
		ep.Settings = t.Settings
		ep.Logger = logger
		res, err := ep.Run(ctx, t.Description(), obs)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Fields: res.Fields(), Evolution: res.TimeEvolution()}, nil
	}

	return r
}

func (r *Registry) Register(name string, run Runner) {
	r.episodes[name] = run
}

func (r *Registry) Get(name string) (Runner, error) {
	fn, ok := r.episodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownEpisode, name)
	}
	return fn, nil
}

// Run dispatches t to the runner of t.Episode.
func (r *Registry) Run(ctx context.Context, t Trial, obs dynamo.Observer) (Outcome, error) {
	fn, err := r.Get(t.Episode)
	if err != nil {
		return Outcome{}, err
	}
	return fn(ctx, t, obs)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.episodes))
	for name := range r.episodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
