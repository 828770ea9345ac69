package pipeline

import (
	"context"
	"errors"

	"github.com/matzehuels/moviegraph/pkg/bipartite"
	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/force"
)

// Simulate runs the force layout for g. A context that ends before the
// last step yields a TIMEOUT error; parameters the simulation refuses
// yield LAYOUT_UNAVAILABLE.
func Simulate(ctx context.Context, g *bipartite.Graph, opts Options) (force.Layout, error) {
	links := make([]force.Link, len(g.Edges))
	for i, e := range g.Edges {
		links[i] = force.Link{Source: e.Source, Target: e.Target}
	}

	sim, err := force.New(g.NodeCount(), links, opts.ForceConfig())
	if err != nil {
		return force.Layout{}, mgerrors.Wrap(mgerrors.ErrCodeLayoutUnavailable, err, "init simulation")
	}

	l, err := sim.Run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return force.Layout{}, mgerrors.Wrap(mgerrors.ErrCodeTimeout, err,
				"layout stopped after %d of %d steps", sim.StepsTaken(), opts.Steps)
		}
		return force.Layout{}, err
	}
	return l, nil
}
