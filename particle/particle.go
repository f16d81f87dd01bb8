/*package particle defines the particle records advanced by the simulator.

Particles live in a contiguous slice indexed by ID; that slice is the
single source of truth. The spatial tree only ever holds indices into it,
never copies of the particles themselves.
*/
package particle

import (
	"github.com/phil-mansfield/gosph/geom"
)

// Particle is one SPH particle. It is created once at initial-condition
// setup and mutated in place every timestep by the force and integration
// code. ID must equal the particle's index in the owning slice.
type Particle[V geom.Vector[V]] struct {
	Pos V // Position
	Vel V // Velocity
	Acc V // Acceleration

	Mass  float64 // Particle mass
	Dens  float64 // Mass density
	Pres  float64 // Pressure
	Ene   float64 // Specific internal energy
	Sound float64 // Sound speed
	SML   float64 // Smoothing length: kernel support radius
	Phi   float64 // Gravitational potential

	ID        int
	Neighbors int // Neighbor count from the last search
}

type Particle1D = Particle[geom.Vec1]
type Particle2D = Particle[geom.Vec2]
type Particle3D = Particle[geom.Vec3]

// Reindex rewrites every particle's ID to its slice index. Call it after
// reordering or resizing a particle slice.
func Reindex[V geom.Vector[V]](parts []Particle[V]) {
	for i := range parts {
		parts[i].ID = i
	}
}
