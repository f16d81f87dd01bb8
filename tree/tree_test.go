package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
)

func testOptions1D() Options[geom.Vec1] {
	return Options[geom.Vec1]{MaxLevel: 20, LeafParticleNum: 1}
}

func line1D(n int, sml float64) []particle.Particle1D {
	parts := make([]particle.Particle1D, n)
	for i := range parts {
		parts[i].Pos = geom.Vec1{float64(i) / float64(n)}
		parts[i].Mass = 1.0
		parts[i].SML = sml
	}
	particle.Reindex(parts)
	return parts
}

func cloud3D(n int, seed int64) []particle.Particle3D {
	gen := rand.New(rand.NewSource(seed))
	parts := make([]particle.Particle3D, n)
	for i := range parts {
		parts[i].Pos = geom.Vec3{gen.Float64(), gen.Float64(), gen.Float64()}
		parts[i].Mass = 0.5 + gen.Float64()
		parts[i].SML = 0.1
	}
	particle.Reindex(parts)
	return parts
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options[geom.Vec1]{MaxLevel: 0, LeafParticleNum: 1})
	assert.Error(t, err, "zero max level")

	_, err = New(Options[geom.Vec1]{MaxLevel: 20, LeafParticleNum: 0})
	assert.Error(t, err, "zero leaf occupancy")

	_, err = New(Options[geom.Vec1]{
		MaxLevel: 20, LeafParticleNum: 1,
		Gravity: GravityOptions{Enabled: true, Theta: -0.5},
	})
	assert.Error(t, err, "negative opening angle")
}

func TestEmptyTree(t *testing.T) {
	tr, err := New(testOptions1D())
	assert.NoError(t, err)

	tr.Build(nil)
	assert.Equal(t, 1, tr.nused)
	assert.True(t, tr.nodes[0].leaf)
	assert.Equal(t, int32(0), tr.nodes[0].pnum)
}

func TestSingleParticle(t *testing.T) {
	tr, _ := New(testOptions1D())
	parts := line1D(1, 0.1)
	tr.Resize(1, 0)
	tr.Build(parts)

	root := &tr.nodes[0]
	assert.True(t, root.leaf)
	assert.Equal(t, int32(1), root.pnum)
	assert.Equal(t, 1.0, root.mass)
	assert.Equal(t, parts[0].Pos, root.mcenter)
}

func TestTwoParticleSplit(t *testing.T) {
	tr, _ := New(testOptions1D())
	parts := []particle.Particle1D{
		{Pos: geom.Vec1{0.0}, Mass: 1, SML: 0.1, ID: 0},
		{Pos: geom.Vec1{1.0}, Mass: 1, SML: 0.1, ID: 1},
	}
	tr.Build(parts)

	root := &tr.nodes[0]
	assert.False(t, root.leaf)
	assert.Equal(t, 3, tr.nused)

	lo, hi := root.child[0], root.child[1]
	assert.True(t, tr.nodes[lo].leaf)
	assert.True(t, tr.nodes[hi].leaf)
	assert.Equal(t, int32(0), tr.idx[tr.nodes[lo].pstart])
	assert.Equal(t, int32(1), tr.idx[tr.nodes[hi].pstart])
}

func TestMassConservation(t *testing.T) {
	tr, err := New(Options[geom.Vec3]{MaxLevel: 20, LeafParticleNum: 2})
	assert.NoError(t, err)

	parts := cloud3D(500, 42)
	total := 0.0
	for i := range parts {
		total += parts[i].Mass
	}

	tr.Build(parts)
	assert.InEpsilon(t, total, tr.nodes[0].mass, 1e-12)

	// The mass center is the mass-weighted mean position.
	var want geom.Vec3
	for i := range parts {
		want = want.Add(parts[i].Pos.Scale(parts[i].Mass))
	}
	want = want.Scale(1 / total)
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want.At(k), tr.nodes[0].mcenter.At(k), 1e-12)
	}
}

func TestSpansPartitionParticles(t *testing.T) {
	tr, _ := New(Options[geom.Vec3]{MaxLevel: 20, LeafParticleNum: 4})
	parts := cloud3D(300, 7)
	tr.Build(parts)

	// Every particle index appears exactly once across the leaf spans.
	seen := make([]int, len(parts))
	for ni := 0; ni < tr.nused; ni++ {
		nd := &tr.nodes[ni]
		if !nd.leaf {
			continue
		}
		for _, pi := range tr.idx[nd.pstart : nd.pstart+nd.pnum] {
			seen[pi]++
		}
	}
	for i, c := range seen {
		assert.Equal(t, 1, c, "particle %d", i)
	}
}

func TestCoincidentParticles(t *testing.T) {
	tr, err := New(Options[geom.Vec2]{MaxLevel: 8, LeafParticleNum: 1})
	assert.NoError(t, err)

	parts := make([]particle.Particle2D, 5)
	for i := range parts {
		parts[i].Pos = geom.Vec2{0.5, 0.5}
		parts[i].Mass = 1.0
		parts[i].SML = 0.1
	}
	particle.Reindex(parts)

	// Termination despite coincident positions: the depth cap turns the
	// degenerate chain into a single overfull leaf.
	tr.Build(parts)
	for ni := 0; ni < tr.nused; ni++ {
		assert.LessOrEqual(t, int(tr.nodes[ni].level), 8)
	}
	assert.Equal(t, 5.0, tr.nodes[0].mass)
}

func TestLeafOccupancy(t *testing.T) {
	tr, _ := New(Options[geom.Vec1]{MaxLevel: 20, LeafParticleNum: 5})
	parts := line1D(20, 0.1)
	tr.Build(parts)

	for ni := 0; ni < tr.nused; ni++ {
		nd := &tr.nodes[ni]
		if nd.leaf && int(nd.level) < 20 {
			assert.LessOrEqual(t, int(nd.pnum), 5)
		}
	}
}

func TestExtremeMasses(t *testing.T) {
	tr, _ := New(testOptions1D())
	parts := []particle.Particle1D{
		{Pos: geom.Vec1{0.3}, Mass: 1e-10, SML: 0.1, ID: 0},
		{Pos: geom.Vec1{0.5}, Mass: 1.0, SML: 0.1, ID: 1},
		{Pos: geom.Vec1{0.7}, Mass: 1e10, SML: 0.1, ID: 2},
	}
	tr.Build(parts)
	assert.InEpsilon(t, 1e10+1.0+1e-10, tr.nodes[0].mass, 1e-12)
}

func TestPeriodicBounds(t *testing.T) {
	per, err := geom.NewPeriodic(geom.Vec1{-0.5}, geom.Vec1{1.5})
	assert.NoError(t, err)
	tr, err := New(Options[geom.Vec1]{
		MaxLevel: 20, LeafParticleNum: 1, Periodic: per,
	})
	assert.NoError(t, err)

	parts := line1D(4, 0.1)
	tr.Build(parts)

	// The root cube is the periodic domain, not the particle hull.
	assert.InDelta(t, 0.5, tr.nodes[0].center[0], 1e-12)
	assert.InDelta(t, 1.0, tr.nodes[0].half, 1e-12)
}

func TestRebuildReusesPool(t *testing.T) {
	tr, _ := New(Options[geom.Vec3]{MaxLevel: 20, LeafParticleNum: 2})
	parts := cloud3D(200, 3)

	tr.Build(parts)
	e1 := tr.Epoch()
	poolLen := len(tr.nodes)

	tr.Build(parts)
	assert.Equal(t, e1+1, tr.Epoch())
	assert.Equal(t, poolLen, len(tr.nodes), "pool should be reused")
}

func TestSetKernel(t *testing.T) {
	tr, _ := New(Options[geom.Vec1]{MaxLevel: 20, LeafParticleNum: 1})
	parts := line1D(8, 0.1)
	parts[5].SML = 0.9
	tr.Build(parts)
	tr.SetKernel()

	assert.Equal(t, 0.9, tr.nodes[0].kernel)
}

func BenchmarkBuild3D(b *testing.B) {
	tr, _ := New(Options[geom.Vec3]{MaxLevel: 20, LeafParticleNum: 8})
	parts := cloud3D(10000, 99)
	tr.Resize(len(parts), 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tr.Build(parts)
	}
}
