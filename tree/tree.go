/*package tree implements the hierarchical spatial index at the heart of
the simulator: a Barnes-Hut style 2^D-ary tree over an SPH particle slice,
generic over spatial dimension.

A tree is rebuilt from scratch every timestep, so nodes are allocated from
a flat pool that is cleared and reused rather than freed. Children are
referenced by pool index, not pointer. Leaf membership is recorded as
contiguous spans of a tree-owned permutation of the particle indices,
repartitioned in place during each build.

Build, SetKernel, FindNeighbors, and TreeForce all run against the
particle slice passed to the most recent Build call. The tree borrows that
slice; the borrow is valid only until the next Build. FindNeighbors and
TreeForce are read-only with respect to the tree and to every particle
except the single target, so a caller may invoke them concurrently for
distinct targets.
*/
package tree

import (
	"fmt"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
)

const (
	// DefaultPoolFactor is the node pool size per particle used by Resize
	// when the caller passes a non-positive factor.
	DefaultPoolFactor = 5

	maxChildren = 8 // 2^D for the largest supported dimension
)

// GravityOptions configures the approximate gravity evaluation. With
// Enabled false, TreeForce is a no-op.
type GravityOptions struct {
	Enabled bool
	G       float64 // gravitational constant
	Theta   float64 // opening angle: 0 forces exact evaluation
}

// Options configures a Tree. MaxLevel caps recursion depth so coincident
// particles cannot split forever; LeafParticleNum is the occupancy at or
// below which a node stops subdividing.
type Options[V geom.Vector[V]] struct {
	MaxLevel        int
	LeafParticleNum int
	Periodic        *geom.Periodic[V] // nil for an isolated domain
	Gravity         GravityOptions
}

type node[V geom.Vector[V]] struct {
	center  V       // geometric center of the node's hypercube
	mcenter V       // center of mass; valid after a build pass
	half    float64 // half edge length
	mass    float64
	kernel  float64 // max smoothing length under this node; set by SetKernel
	pstart  int32   // span into Tree.idx
	pnum    int32
	child   [maxChildren]int32 // pool indices; -1 for absent
	level   int32
	leaf    bool
}

func (nd *node[V]) reset() {
	*nd = node[V]{}
	for i := range nd.child {
		nd.child[i] = -1
	}
}

// Tree is a spatial index over one particle slice. The zero value is not
// usable; create trees with New.
type Tree[V geom.Vector[V]] struct {
	dim      int
	nchild   int
	maxLevel int
	leafNum  int
	per      *geom.Periodic[V]

	grav   bool
	g      float64
	theta2 float64

	nodes []node[V]
	nused int
	idx   []int32 // permutation of particle indices; leaves own spans
	tmp   []int32

	parts []particle.Particle[V] // borrowed; valid until the next Build
	epoch int
}

// New returns an empty tree. Configuration errors are reported here, never
// during a build or traversal.
func New[V geom.Vector[V]](opt Options[V]) (*Tree[V], error) {
	if opt.MaxLevel <= 0 {
		return nil, fmt.Errorf("tree: MaxLevel must be positive, got %d",
			opt.MaxLevel)
	}
	if opt.LeafParticleNum <= 0 {
		return nil, fmt.Errorf(
			"tree: LeafParticleNum must be positive, got %d",
			opt.LeafParticleNum,
		)
	}
	if opt.Gravity.Enabled && opt.Gravity.Theta < 0 {
		return nil, fmt.Errorf("tree: opening angle must be non-negative, "+
			"got %g", opt.Gravity.Theta)
	}

	var z V
	t := &Tree[V]{
		dim:      z.Dim(),
		nchild:   1 << z.Dim(),
		maxLevel: opt.MaxLevel,
		leafNum:  opt.LeafParticleNum,
		per:      opt.Periodic,
		grav:     opt.Gravity.Enabled,
		g:        opt.Gravity.G,
		theta2:   opt.Gravity.Theta * opt.Gravity.Theta,
	}
	return t, nil
}

// Epoch returns the build generation. It increments on every Build call,
// so results derived from an older epoch refer to a dead tree state.
func (t *Tree[V]) Epoch() int { return t.epoch }

// Resize preallocates the node pool and index buffers for n particles.
// Build grows them on demand, so Resize is an optimization, not a
// requirement. factor scales the pool relative to n; non-positive means
// DefaultPoolFactor.
func (t *Tree[V]) Resize(n, factor int) {
	if factor <= 0 {
		factor = DefaultPoolFactor
	}
	if need := n*factor + 1; len(t.nodes) < need {
		t.nodes = make([]node[V], need)
	}
	if len(t.idx) < n {
		t.idx = make([]int32, n)
		t.tmp = make([]int32, n)
	}
}

// Build constructs the spatial index over parts. Any previous tree state,
// and any result derived from it, is invalidated. Zero particles produce
// an empty tree, not an error.
func (t *Tree[V]) Build(parts []particle.Particle[V]) {
	n := len(parts)
	t.Resize(n, DefaultPoolFactor)
	t.parts = parts
	t.epoch++

	t.nused = 1
	root := &t.nodes[0]
	root.reset()
	root.pstart, root.pnum = 0, int32(n)
	root.center, root.half = t.bounds(parts)

	for i := 0; i < n; i++ {
		t.idx[i] = int32(i)
	}

	t.split(0)
	if n > 0 {
		t.moments(0)
	}
}

// bounds returns the center and half edge length of the root hypercube:
// the periodic domain when one is set, otherwise the tightest cube around
// the particles.
func (t *Tree[V]) bounds(parts []particle.Particle[V]) (center V, half float64) {
	if t.per.Valid() {
		min, max := t.per.Min(), t.per.Max()
		center = min.Add(max).Scale(0.5)
		for k := 0; k < t.dim; k++ {
			if h := (max.At(k) - min.At(k)) * 0.5; h > half {
				half = h
			}
		}
		return center, half
	}
	if len(parts) == 0 {
		return center, 0
	}

	min, max := parts[0].Pos, parts[0].Pos
	for i := 1; i < len(parts); i++ {
		p := parts[i].Pos
		for k := 0; k < t.dim; k++ {
			if x := p.At(k); x < min.At(k) {
				min = min.With(k, x)
			} else if x > max.At(k) {
				max = max.With(k, x)
			}
		}
	}
	center = min.Add(max).Scale(0.5)
	for k := 0; k < t.dim; k++ {
		if h := (max.At(k) - min.At(k)) * 0.5; h > half {
			half = h
		}
	}
	return center, half
}

// childIndex maps a position to the child octant of a node centered at c.
// Coordinates on the bisection plane go to the high side.
func (t *Tree[V]) childIndex(c V, pos V) int {
	ci := 0
	for k := 0; k < t.dim; k++ {
		if pos.At(k) >= c.At(k) {
			ci |= 1 << k
		}
	}
	return ci
}

func (t *Tree[V]) alloc() int32 {
	if t.nused == len(t.nodes) {
		t.nodes = append(t.nodes, node[V]{})
	}
	i := int32(t.nused)
	t.nused++
	t.nodes[i].reset()
	return i
}

// split recursively subdivides node ni by bisecting every axis at the
// geometric center. The particle span is repartitioned stably by child
// index, so traversal order (and therefore every summation order in this
// package) is reproducible.
func (t *Tree[V]) split(ni int32) {
	nd := &t.nodes[ni]
	if int(nd.pnum) <= t.leafNum || int(nd.level) >= t.maxLevel {
		nd.leaf = true
		return
	}

	lo, hi := nd.pstart, nd.pstart+nd.pnum
	center := nd.center

	var count [maxChildren]int32
	for _, pi := range t.idx[lo:hi] {
		count[t.childIndex(center, t.parts[pi].Pos)]++
	}

	var off [maxChildren]int32
	sum := int32(0)
	for c := 0; c < t.nchild; c++ {
		off[c] = sum
		sum += count[c]
	}

	copy(t.tmp[lo:hi], t.idx[lo:hi])
	for _, pi := range t.tmp[lo:hi] {
		c := t.childIndex(center, t.parts[pi].Pos)
		t.idx[lo+off[c]] = pi
		off[c]++
	}

	// alloc may grow the pool, so collect child indices before touching
	// node fields again.
	var childIdx [maxChildren]int32
	for c := 0; c < t.nchild; c++ {
		if count[c] == 0 {
			childIdx[c] = -1
		} else {
			childIdx[c] = t.alloc()
		}
	}
	nd = &t.nodes[ni]

	q := nd.half * 0.5
	start := lo
	for c := 0; c < t.nchild; c++ {
		nd.child[c] = childIdx[c]
		if childIdx[c] == -1 {
			continue
		}

		cc := nd.center
		for k := 0; k < t.dim; k++ {
			if c&(1<<k) != 0 {
				cc = cc.With(k, cc.At(k)+q)
			} else {
				cc = cc.With(k, cc.At(k)-q)
			}
		}

		cn := &t.nodes[childIdx[c]]
		cn.center = cc
		cn.half = q
		cn.level = nd.level + 1
		cn.pstart = start
		cn.pnum = count[c]
		start += count[c]
	}

	for c := 0; c < t.nchild; c++ {
		if ci := t.nodes[ni].child[c]; ci != -1 {
			t.split(ci)
		}
	}
}

// moments computes total mass and mass center bottom-up: leaves directly
// over their particles, internal nodes as the mass-weighted sum over
// children.
func (t *Tree[V]) moments(ni int32) {
	nd := &t.nodes[ni]

	var sum V
	mass := 0.0
	if nd.leaf {
		for _, pi := range t.idx[nd.pstart : nd.pstart+nd.pnum] {
			p := &t.parts[pi]
			mass += p.Mass
			sum = sum.Add(p.Pos.Scale(p.Mass))
		}
	} else {
		for c := 0; c < t.nchild; c++ {
			ci := nd.child[c]
			if ci == -1 {
				continue
			}
			t.moments(ci)
			cn := &t.nodes[ci]
			mass += cn.mass
			sum = sum.Add(cn.mcenter.Scale(cn.mass))
		}
	}

	nd.mass = mass
	if mass > 0 {
		nd.mcenter = sum.Scale(1 / mass)
	} else {
		// Massless subtree: fall back to the geometric center so the
		// mass center is still a point inside the node.
		nd.mcenter = nd.center
	}
}

// SetKernel runs the post-build pass that records, on every node, the
// maximum smoothing length among the particles beneath it. FindNeighbors
// needs it whenever SearchConfig.UseMaxKernel is set; calling Build alone
// leaves the kernel sizes zero.
func (t *Tree[V]) SetKernel() {
	if len(t.parts) == 0 {
		return
	}
	t.setKernel(0)
}

func (t *Tree[V]) setKernel(ni int32) float64 {
	nd := &t.nodes[ni]
	k := 0.0
	if nd.leaf {
		for _, pi := range t.idx[nd.pstart : nd.pstart+nd.pnum] {
			if sml := t.parts[pi].SML; sml > k {
				k = sml
			}
		}
	} else {
		for c := 0; c < t.nchild; c++ {
			if ci := nd.child[c]; ci != -1 {
				if ck := t.setKernel(ci); ck > k {
					k = ck
				}
			}
		}
	}
	nd.kernel = k
	return k
}
