// Package force implements a two-dimensional force-directed layout.
//
// The simulation follows the classic position-Verlet scheme used by
// interactive graph tools: every step applies link springs, a gravity pull
// toward the center of the simulation area and a many-body repulsion
// (Barnes–Hut approximated by gonum's spatial/barneshut when
// [Config.Theta] > 0), then integrates
// positions with friction. The cooling parameter alpha starts at
// [Config.Alpha] and is multiplied by [Config.AlphaDecay] on every step.
//
// # Fixed Work
//
// [Simulation.Run] always performs exactly [Config.Steps] steps: there is
// no convergence check and no early stop, so large graphs may still be
// unsettled when it returns. The only failure mode is context
// cancellation, checked before every step and every
// [chargeCheckInterval] bodies of the repulsion pass.
//
// # Determinism
//
// Initial positions are drawn from a PCG generator seeded with
// [Config.Seed], so identical inputs produce identical layouts.
//
//	sim, err := force.New(len(nodes), links, force.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	layout, err := sim.Run(ctx)
package force
