package tree

import (
	"math"

	"github.com/phil-mansfield/gosph/particle"
)

// forceStats instruments one force evaluation. Kept off the Tree so
// concurrent TreeForce calls on distinct targets stay safe.
type forceStats struct {
	direct int // leaf-level point evaluations
}

// TreeForce accumulates the approximate gravitational acceleration and
// potential of the whole tree onto p.Acc and p.Phi. Accumulation is
// additive: zero the fields first for a fresh result. With gravity
// disabled in the tree's options this is a no-op.
//
// Internal nodes satisfying the opening-angle criterion (s/d)^2 < theta^2
// are treated as point masses at their mass centers; leaves are always
// evaluated as point masses. Self-interaction is excluded structurally: a
// leaf holding only the target is skipped by identity, and zero-distance
// contributions are dropped rather than softened.
func (t *Tree[V]) TreeForce(p *particle.Particle[V]) {
	t.treeForce(p, nil)
}

func (t *Tree[V]) treeForce(p *particle.Particle[V], stats *forceStats) {
	if !t.grav || len(t.parts) == 0 {
		return
	}
	t.forceNode(0, p, stats)
}

func (t *Tree[V]) forceNode(
	ni int32, p *particle.Particle[V], stats *forceStats,
) {
	nd := &t.nodes[ni]
	if nd.pnum == 0 || nd.mass == 0 {
		return
	}
	if nd.leaf && nd.pnum == 1 && t.idx[nd.pstart] == int32(p.ID) {
		// The target's own node exerts no force on it.
		return
	}

	d := t.per.Displacement(nd.mcenter, p.Pos)
	r2 := d.Dot(d)
	s := nd.half * 2

	if nd.leaf || s*s < t.theta2*r2 {
		if r2 == 0 {
			// Coincident with the mass center: a degenerate evaluation,
			// not an error.
			return
		}
		if stats != nil && nd.leaf {
			stats.direct++
		}
		r := math.Sqrt(r2)
		f := t.g * nd.mass / (r2 * r)
		p.Acc = p.Acc.Add(d.Scale(f))
		p.Phi -= t.g * nd.mass / r
		return
	}

	// Fixed child-index order keeps the floating-point summation
	// reproducible across runs.
	for ci := 0; ci < t.nchild; ci++ {
		if child := nd.child[ci]; child != -1 {
			t.forceNode(child, p, stats)
		}
	}
}
