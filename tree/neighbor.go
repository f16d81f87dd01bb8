package tree

import (
	"fmt"
	"math"
	"sort"

	"github.com/phil-mansfield/gosph/particle"
)

const (
	// SafetyFactor scales the expected neighbor count into the collector
	// capacity, so locally dense regions overflow the nominal count
	// without being truncated.
	SafetyFactor = 20

	// MaxReasonableNeighbors is a sanity cap: SPH runs keep tens to a few
	// hundred neighbors per particle, so anything near this limit is a
	// configuration bug, not a physical setup.
	MaxReasonableNeighbors = 100000
)

// SearchConfig configures one neighbor search. Construct it with
// NewSearchConfig; a hand-built config must pass Validate before use.
type SearchConfig struct {
	// MaxNeighbors caps the result size. Qualifying candidates beyond it
	// are counted but dropped, and the result is flagged as truncated.
	MaxNeighbors int

	// UseMaxKernel widens the search radius to the larger of the target's
	// smoothing length and the node's recorded maximum, so pairs with
	// unequal smoothing lengths see each other symmetrically. Requires a
	// SetKernel pass after Build.
	UseMaxKernel bool
}

// NewSearchConfig derives a validated config from the expected neighbor
// count of the simulation. Invalid counts fail here, before any traversal
// runs; they are never silently clamped.
func NewSearchConfig(expectedNeighbors int, useMaxKernel bool) (SearchConfig, error) {
	if expectedNeighbors <= 0 {
		return SearchConfig{}, fmt.Errorf(
			"tree: expected neighbor count must be positive, got %d",
			expectedNeighbors,
		)
	}
	cfg := SearchConfig{
		MaxNeighbors: expectedNeighbors * SafetyFactor,
		UseMaxKernel: useMaxKernel,
	}
	if err := cfg.Validate(); err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

// Validate checks the capacity invariant 0 < MaxNeighbors <=
// MaxReasonableNeighbors.
func (cfg SearchConfig) Validate() error {
	if cfg.MaxNeighbors <= 0 || cfg.MaxNeighbors > MaxReasonableNeighbors {
		return fmt.Errorf(
			"tree: MaxNeighbors must be in (0, %d], got %d",
			MaxReasonableNeighbors, cfg.MaxNeighbors,
		)
	}
	return nil
}

// SearchResult is the immutable product of one FindNeighbors call.
type SearchResult struct {
	// Indices holds the qualifying particle indices, sorted by ascending
	// distance from the target, ties broken by ascending index.
	Indices []int

	// Truncated reports that more candidates qualified than the capacity
	// allowed.
	Truncated bool

	// TotalCandidates counts every distance-qualifying candidate offered
	// during the search, including those dropped at capacity.
	TotalCandidates int

	// Epoch is the tree build generation the result was computed against.
	// A result whose epoch trails the tree's is stale.
	Epoch int
}

// collector accumulates candidate indices during traversal. Offers beyond
// capacity, and offers of invalid indices, are rejected but still counted,
// so truncation can be reported faithfully. Rejection is an ordinary
// boolean outcome here, never an error: it happens constantly in dense
// regions.
type collector struct {
	ids   []int32
	dist2 []float64
	cap   int
	total int
}

func newCollector(capacity int) *collector {
	reserve := capacity
	if reserve > 1024 {
		reserve = 1024
	}
	return &collector{
		ids:   make([]int32, 0, reserve),
		dist2: make([]float64, 0, reserve),
		cap:   capacity,
	}
}

func (c *collector) offer(id int32, d2 float64) bool {
	c.total++
	if len(c.ids) >= c.cap {
		return false
	}
	if id < 0 {
		return false
	}
	c.ids = append(c.ids, id)
	c.dist2 = append(c.dist2, d2)
	return true
}

// finalize sorts the collected candidates by distance and freezes them
// into a result. A collector must be finalized exactly once.
func (c *collector) finalize() SearchResult {
	sort.Sort(byDist{c})
	indices := make([]int, len(c.ids))
	for i, id := range c.ids {
		indices[i] = int(id)
	}
	return SearchResult{
		Indices:         indices,
		Truncated:       c.total > len(c.ids),
		TotalCandidates: c.total,
	}
}

// byDist sorts a collector's candidates by ascending distance, with
// ascending index as the stable tie-break.
type byDist struct{ c *collector }

func (s byDist) Len() int { return len(s.c.ids) }
func (s byDist) Less(i, j int) bool {
	if s.c.dist2[i] != s.c.dist2[j] {
		return s.c.dist2[i] < s.c.dist2[j]
	}
	return s.c.ids[i] < s.c.ids[j]
}
func (s byDist) Swap(i, j int) {
	s.c.ids[i], s.c.ids[j] = s.c.ids[j], s.c.ids[i]
	s.c.dist2[i], s.c.dist2[j] = s.c.dist2[j], s.c.dist2[i]
}

// FindNeighbors returns the particles within the target's kernel radius,
// sorted by distance. It mutates neither the tree nor any particle, and is
// deterministic for a fixed tree state and config. The target is excluded
// from its own neighbor list by index, not by distance.
func (t *Tree[V]) FindNeighbors(
	p *particle.Particle[V], cfg SearchConfig,
) (SearchResult, error) {
	if err := cfg.Validate(); err != nil {
		return SearchResult{}, err
	}
	if t.parts == nil {
		return SearchResult{}, fmt.Errorf(
			"tree: FindNeighbors called before Build",
		)
	}

	c := newCollector(cfg.MaxNeighbors)
	if len(t.parts) > 0 {
		t.searchNode(0, p, cfg, c)
	}
	res := c.finalize()
	res.Epoch = t.epoch
	return res, nil
}

func (t *Tree[V]) searchNode(
	ni int32, p *particle.Particle[V], cfg SearchConfig, c *collector,
) {
	nd := &t.nodes[ni]
	if nd.pnum == 0 {
		return
	}

	h := p.SML
	if cfg.UseMaxKernel && nd.kernel > h {
		h = nd.kernel
	}

	// Prune on the distance from the target to the node's hypercube,
	// under the minimum image when the domain is periodic.
	d := t.per.Displacement(p.Pos, nd.center)
	sum := 0.0
	for k := 0; k < t.dim; k++ {
		if e := math.Abs(d.At(k)) - nd.half; e > 0 {
			sum += e * e
		}
	}
	if sum > h*h {
		return
	}

	if nd.leaf {
		for _, pi := range t.idx[nd.pstart : nd.pstart+nd.pnum] {
			q := &t.parts[pi]
			if q.ID == p.ID {
				continue
			}
			r := t.per.Displacement(p.Pos, q.Pos)
			if d2 := r.Dot(r); d2 < h*h {
				c.offer(int32(q.ID), d2)
			}
		}
		return
	}

	// Child-index order: reproducible summation and fixture ordering.
	for ci := 0; ci < t.nchild; ci++ {
		if child := nd.child[ci]; child != -1 {
			t.searchNode(child, p, cfg, c)
		}
	}
}
