package sph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/kernel"
	"github.com/phil-mansfield/gosph/particle"
	"github.com/phil-mansfield/gosph/tree"
)

// unitLattice fills the unit box with nSide^3 particles of total mass 1,
// so the exact density is 1 everywhere under periodic wrapping.
func unitLattice(nSide int) []particle.Particle3D {
	n := nSide * nSide * nSide
	dx := 1.0 / float64(nSide)
	parts := make([]particle.Particle3D, 0, n)
	for ix := 0; ix < nSide; ix++ {
		for iy := 0; iy < nSide; iy++ {
			for iz := 0; iz < nSide; iz++ {
				parts = append(parts, particle.Particle3D{
					Pos: geom.Vec3{
						(float64(ix) + 0.5) * dx,
						(float64(iy) + 0.5) * dx,
						(float64(iz) + 0.5) * dx,
					},
					Mass: 1.0 / float64(n),
					SML:  2.4 * dx,
				})
			}
		}
	}
	particle.Reindex(parts)
	return parts
}

func unitBox() *geom.Periodic[geom.Vec3] {
	per, err := geom.NewPeriodic(geom.Vec3{0, 0, 0}, geom.Vec3{1, 1, 1})
	if err != nil {
		panic(err)
	}
	return per
}

func TestLatticeDensity(t *testing.T) {
	per := unitBox()
	tr, err := tree.New(tree.Options[geom.Vec3]{
		MaxLevel: 20, LeafParticleNum: 8, Periodic: per,
	})
	assert.NoError(t, err)

	parts := unitLattice(8)
	tr.Build(parts)

	cfg, err := tree.NewSearchConfig(64, false)
	assert.NoError(t, err)

	k := kernel.CubicSpline(3)
	truncated, err := CalcDensity(parts, tr, cfg, k, per)
	assert.NoError(t, err)
	assert.Equal(t, 0, truncated)

	for i := range parts {
		assert.InDelta(t, 1.0, parts[i].Dens, 0.05, "particle %d", i)
		assert.Greater(t, parts[i].Neighbors, 0)
	}

	// Uniform lattice with periodic wrap: every particle sees the same
	// neighborhood.
	for i := 1; i < len(parts); i++ {
		assert.InDelta(t, parts[0].Dens, parts[i].Dens, 1e-10)
		assert.Equal(t, parts[0].Neighbors, parts[i].Neighbors)
	}
}

func TestCalcPressure(t *testing.T) {
	parts := []particle.Particle3D{
		{Mass: 1, Dens: 2.0, Ene: 1.5},
		{Mass: 1, Dens: 1.0, Ene: 0.0},
	}
	CalcPressure(parts, 5.0/3.0)

	assert.InDelta(t, (5.0/3.0-1)*2.0*1.5, parts[0].Pres, 1e-14)
	assert.Greater(t, parts[0].Sound, 0.0)

	// Cold gas: zero pressure, zero sound speed.
	assert.Equal(t, 0.0, parts[1].Pres)
	assert.Equal(t, 0.0, parts[1].Sound)
}

func TestCalcGravityZeroesFirst(t *testing.T) {
	tr, _ := tree.New(tree.Options[geom.Vec1]{
		MaxLevel: 20, LeafParticleNum: 1,
	})
	parts := []particle.Particle1D{
		{Pos: geom.Vec1{0.2}, Mass: 1, SML: 0.1,
			Acc: geom.Vec1{99}, Phi: 99},
	}
	particle.Reindex(parts)
	tr.Build(parts)

	// Gravity disabled: stale values are still cleared.
	CalcGravity(parts, tr)
	assert.Equal(t, 0.0, parts[0].Acc[0])
	assert.Equal(t, 0.0, parts[0].Phi)
}

func TestNewSolverValidation(t *testing.T) {
	tr, _ := tree.New(tree.Options[geom.Vec3]{MaxLevel: 20, LeafParticleNum: 1})
	k := kernel.CubicSpline(3)
	cfg, _ := tree.NewSearchConfig(32, false)
	parts := unitLattice(2)

	_, err := NewSolver(tr, k, nil, tree.SearchConfig{}, 5.0/3.0, 1e-3, parts)
	assert.Error(t, err, "invalid search config")

	_, err = NewSolver(tr, k, nil, cfg, 1.0, 1e-3, parts)
	assert.Error(t, err, "gamma at the isothermal limit")

	_, err = NewSolver(tr, k, nil, cfg, 5.0/3.0, 0, parts)
	assert.Error(t, err, "zero time step")

	s, err := NewSolver(tr, k, nil, cfg, 5.0/3.0, 1e-3, parts)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.Steps())
}

func TestStaticLatticeStep(t *testing.T) {
	per := unitBox()
	tr, _ := tree.New(tree.Options[geom.Vec3]{
		MaxLevel: 20, LeafParticleNum: 8, Periodic: per,
	})
	k := kernel.CubicSpline(3)
	cfg, _ := tree.NewSearchConfig(64, false)
	parts := unitLattice(4)
	orig := parts[7].Pos

	s, err := NewSolver(tr, k, per, cfg, 5.0/3.0, 1e-3, parts)
	assert.NoError(t, err)

	// Without gravity and with zero initial velocities nothing moves,
	// but densities and pressures are refreshed.
	for step := 0; step < 3; step++ {
		truncated, err := s.Step()
		assert.NoError(t, err)
		assert.Equal(t, 0, truncated)
	}
	assert.Equal(t, 3, s.Steps())
	assert.Equal(t, orig, parts[7].Pos)
	assert.InDelta(t, 1.0, parts[7].Dens, 0.05)
}

func TestStepWrapsPositions(t *testing.T) {
	per := unitBox()
	tr, _ := tree.New(tree.Options[geom.Vec3]{
		MaxLevel: 20, LeafParticleNum: 8, Periodic: per,
	})
	k := kernel.CubicSpline(3)
	cfg, _ := tree.NewSearchConfig(64, false)

	parts := unitLattice(4)
	parts[0].Vel = geom.Vec3{10, 0, 0} // crosses the boundary in one step

	s, _ := NewSolver(tr, k, per, cfg, 5.0/3.0, 0.1, parts)
	_, err := s.Step()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, parts[0].Pos[0], 0.0)
	assert.Less(t, parts[0].Pos[0], 1.0)
}

func TestTotalEnergy(t *testing.T) {
	tr, _ := tree.New(tree.Options[geom.Vec1]{MaxLevel: 20, LeafParticleNum: 1})
	k := kernel.CubicSpline(1)
	cfg, _ := tree.NewSearchConfig(8, false)

	parts := []particle.Particle1D{
		{Pos: geom.Vec1{0.0}, Mass: 1, SML: 0.1},
		{Pos: geom.Vec1{1.0}, Mass: 1, SML: 0.1},
	}
	s, err := NewSolver(tr, k, nil, cfg, 5.0/3.0, 1e-3, parts)
	assert.NoError(t, err)

	parts[0].Vel = geom.Vec1{2}
	parts[0].Phi = -1
	parts[1].Phi = -1
	assert.InDelta(t, 0.5*4-1.0, s.TotalEnergy(), 1e-14)
}
