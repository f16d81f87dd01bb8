/*package sph holds the minimal hydrodynamics layer driven by the spatial
tree: kernel density summation, an ideal-gas equation of state, and
tree-approximated self-gravity, advanced by a leapfrog integrator.
*/
package sph

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/kernel"
	"github.com/phil-mansfield/gosph/particle"
	"github.com/phil-mansfield/gosph/tree"
)

// CalcDensity recomputes every particle's density by kernel-weighted
// summation over its neighbors, including the self contribution. It
// returns the number of particles whose neighbor lists were truncated;
// truncation degrades accuracy but is not an error.
func CalcDensity[V geom.Vector[V]](
	parts []particle.Particle[V], t *tree.Tree[V], cfg tree.SearchConfig,
	k kernel.Kernel, per *geom.Periodic[V],
) (truncated int, err error) {
	for i := range parts {
		p := &parts[i]
		res, err := t.FindNeighbors(p, cfg)
		if err != nil {
			return truncated, err
		}
		if res.Truncated {
			truncated++
		}

		dens := p.Mass * k.W(0, p.SML)
		for _, j := range res.Indices {
			q := &parts[j]
			r := per.Distance(p.Pos, q.Pos)
			dens += q.Mass * k.W(r, p.SML)
		}
		p.Dens = dens
		p.Neighbors = len(res.Indices)
	}
	return truncated, nil
}

// CalcPressure applies the ideal-gas equation of state
// P = (gamma - 1) rho u.
func CalcPressure[V geom.Vector[V]](parts []particle.Particle[V], gamma float64) {
	for i := range parts {
		p := &parts[i]
		p.Pres = (gamma - 1) * p.Dens * p.Ene
		if p.Dens > 0 && p.Pres > 0 {
			p.Sound = math.Sqrt(gamma * p.Pres / p.Dens)
		} else {
			p.Sound = 0
		}
	}
}

// CalcGravity zeroes every particle's acceleration and potential, then
// accumulates the tree-approximated gravitational force onto each.
func CalcGravity[V geom.Vector[V]](parts []particle.Particle[V], t *tree.Tree[V]) {
	var zero V
	for i := range parts {
		p := &parts[i]
		p.Acc = zero
		p.Phi = 0
		t.TreeForce(p)
	}
}

// Solver advances a particle set with a kick-drift-kick leapfrog. It owns
// the per-step orchestration: rebuild the tree, refresh kernel sizes,
// resum densities, recompute forces, then integrate.
type Solver[V geom.Vector[V]] struct {
	Tree     *tree.Tree[V]
	Kernel   kernel.Kernel
	Periodic *geom.Periodic[V]
	Config   tree.SearchConfig
	Gamma    float64
	DT       float64

	parts []particle.Particle[V]
	step  int
}

// NewSolver validates the pieces and binds them to a particle slice.
func NewSolver[V geom.Vector[V]](
	t *tree.Tree[V], k kernel.Kernel, per *geom.Periodic[V],
	cfg tree.SearchConfig, gamma, dt float64,
	parts []particle.Particle[V],
) (*Solver[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gamma <= 1 {
		return nil, fmt.Errorf("sph: gamma must exceed 1, got %g", gamma)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("sph: time step must be positive, got %g", dt)
	}
	particle.Reindex(parts)
	return &Solver[V]{
		Tree: t, Kernel: k, Periodic: per,
		Config: cfg, Gamma: gamma, DT: dt,
		parts: parts,
	}, nil
}

// Step advances the system by one leapfrog step and returns the number of
// truncated neighbor lists encountered.
func (s *Solver[V]) Step() (truncated int, err error) {
	dt := s.DT

	// Kick-drift half step.
	for i := range s.parts {
		p := &s.parts[i]
		p.Vel = p.Vel.Add(p.Acc.Scale(dt / 2))
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		if s.Periodic.Valid() {
			p.Pos = s.Periodic.Wrap(p.Pos)
		}
	}

	s.Tree.Build(s.parts)
	s.Tree.SetKernel()

	truncated, err = CalcDensity(s.parts, s.Tree, s.Config, s.Kernel, s.Periodic)
	if err != nil {
		return truncated, err
	}
	CalcPressure(s.parts, s.Gamma)
	CalcGravity(s.parts, s.Tree)

	// Closing kick.
	for i := range s.parts {
		p := &s.parts[i]
		p.Vel = p.Vel.Add(p.Acc.Scale(dt / 2))
	}

	s.step++
	return truncated, nil
}

// Step count since the solver was created.
func (s *Solver[V]) Steps() int { return s.step }

// TotalEnergy returns the kinetic plus potential energy of the system.
// The potential sum halves each pairwise term, which is already double
// counted across particles.
func (s *Solver[V]) TotalEnergy() float64 {
	e := 0.0
	for i := range s.parts {
		p := &s.parts[i]
		e += 0.5*p.Mass*p.Vel.Dot(p.Vel) + 0.5*p.Mass*p.Phi
	}
	return e
}
