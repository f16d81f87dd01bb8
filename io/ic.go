/*package io reads run configuration and initial conditions and writes
snapshots. Binary snapshot formats are deliberately out of scope; particle
tables and snapshots are plain whitespace-separated text.
*/
package io

import (
	"fmt"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
)

// ReadParticles3D reads a 3D initial-condition table with the columns
// x y z mass smoothing-length. IDs are assigned in row order.
func ReadParticles3D(file string) ([]particle.Particle3D, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2, 3, 4}, nil)
	if err != nil {
		return nil, err
	}
	xs, ys, zs, ms, smls := cols[0], cols[1], cols[2], cols[3], cols[4]

	parts := make([]particle.Particle3D, len(xs))
	for i := range parts {
		p := &parts[i]
		p.Pos = geom.Vec3{xs[i], ys[i], zs[i]}
		p.Mass, p.SML = ms[i], smls[i]
	}
	if err := checkParticles3D(parts); err != nil {
		return nil, err
	}
	particle.Reindex(parts)
	return parts, nil
}

// ReadParticles2D reads a 2D initial-condition table with the columns
// x y mass smoothing-length.
func ReadParticles2D(file string) ([]particle.Particle2D, error) {
	cols, err := table.ReadTable(file, []int{0, 1, 2, 3}, nil)
	if err != nil {
		return nil, err
	}
	xs, ys, ms, smls := cols[0], cols[1], cols[2], cols[3]

	parts := make([]particle.Particle2D, len(xs))
	for i := range parts {
		p := &parts[i]
		p.Pos = geom.Vec2{xs[i], ys[i]}
		p.Mass, p.SML = ms[i], smls[i]
	}
	for i := range parts {
		if parts[i].Mass <= 0 || parts[i].SML <= 0 {
			return nil, fmt.Errorf(
				"io: particle %d has non-positive mass or smoothing length", i,
			)
		}
	}
	particle.Reindex(parts)
	return parts, nil
}

func checkParticles3D(parts []particle.Particle3D) error {
	for i := range parts {
		if parts[i].Mass <= 0 || parts[i].SML <= 0 {
			return fmt.Errorf(
				"io: particle %d has non-positive mass or smoothing length", i,
			)
		}
	}
	return nil
}

// Lattice3D generates nSide^3 unit-total-mass particles on a uniform
// lattice filling [0, 1)^3, with smoothing lengths spanning a few lattice
// spacings. It is the fallback initial condition when no input table is
// given.
func Lattice3D(nSide int) []particle.Particle3D {
	n := nSide * nSide * nSide
	dx := 1.0 / float64(nSide)
	mass := 1.0 / float64(n)

	parts := make([]particle.Particle3D, n)
	i := 0
	for ix := 0; ix < nSide; ix++ {
		for iy := 0; iy < nSide; iy++ {
			for iz := 0; iz < nSide; iz++ {
				p := &parts[i]
				p.Pos = geom.Vec3{
					(float64(ix) + 0.5) * dx,
					(float64(iy) + 0.5) * dx,
					(float64(iz) + 0.5) * dx,
				}
				p.Mass = mass
				p.SML = 2.4 * dx
				i++
			}
		}
	}
	particle.Reindex(parts)
	return parts
}
