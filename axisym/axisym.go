/*package axisym adapts 2D axisymmetric hydrodynamic particles to the 3D
gravity tree. Hydrodynamics runs in the (r, z) half-plane; gravity is
evaluated on the particle's full 3D position and projected back onto the
radial and vertical directions.
*/
package axisym

import (
	"math"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
	"github.com/phil-mansfield/gosph/tree"
)

// Particle is a 2.5D particle: a 2D hydro particle whose Pos is
// (cylindrical radius, z), plus an azimuth angle locating it in 3D for
// gravity purposes. ID must equal the particle's slice index.
type Particle struct {
	particle.Particle[geom.Vec2]

	Azimuth float64   // phi, in radians
	GPos    geom.Vec3 // Cartesian gravity position; set by UpdateGravityPos
	GAcc    geom.Vec3 // full 3D gravitational acceleration
}

// R returns the cylindrical radius.
func (p *Particle) R() float64 { return p.Pos.At(0) }

// Z returns the vertical coordinate.
func (p *Particle) Z() float64 { return p.Pos.At(1) }

// UpdateGravityPos recomputes the Cartesian gravity position from the
// cylindrical coordinates and azimuth.
func (p *Particle) UpdateGravityPos() {
	r := p.R()
	p.GPos = geom.Vec3{
		r * math.Cos(p.Azimuth),
		r * math.Sin(p.Azimuth),
		p.Z(),
	}
}

// GravityTree evaluates self-gravity for 2.5D particles through an
// ordinary 3D tree. The 3D shadow particles are kept in an internal
// buffer that is rewritten on every Build.
type GravityTree struct {
	tree *tree.Tree[geom.Vec3]
	buf  []particle.Particle[geom.Vec3]
}

// NewGravityTree builds the underlying 3D tree from opt.
func NewGravityTree(opt tree.Options[geom.Vec3]) (*GravityTree, error) {
	t, err := tree.New(opt)
	if err != nil {
		return nil, err
	}
	return &GravityTree{tree: t}, nil
}

// Resize preallocates the underlying tree for n particles.
func (g *GravityTree) Resize(n, factor int) {
	g.tree.Resize(n, factor)
	if cap(g.buf) < n {
		g.buf = make([]particle.Particle[geom.Vec3], n)
	}
}

// Build refreshes every particle's gravity position and rebuilds the 3D
// tree over the shadow particles.
func (g *GravityTree) Build(parts []Particle) {
	if cap(g.buf) < len(parts) {
		g.buf = make([]particle.Particle[geom.Vec3], len(parts))
	}
	g.buf = g.buf[:len(parts)]

	for i := range parts {
		p := &parts[i]
		p.UpdateGravityPos()
		s := &g.buf[i]
		*s = particle.Particle[geom.Vec3]{
			Pos:  p.GPos,
			Mass: p.Mass,
			SML:  p.SML,
			ID:   p.ID,
		}
	}

	g.tree.Build(g.buf)
	g.tree.SetKernel()
}

// TreeForce evaluates 3D gravity for p, stores the potential and the full
// 3D acceleration, and projects the acceleration onto the hydro plane:
// Acc[0] is the radial component, Acc[1] the vertical one.
func (g *GravityTree) TreeForce(p *Particle) {
	shadow := particle.Particle[geom.Vec3]{
		Pos:  p.GPos,
		Mass: p.Mass,
		SML:  p.SML,
		ID:   p.ID,
	}
	g.tree.TreeForce(&shadow)

	p.Phi = shadow.Phi
	p.GAcc = shadow.Acc

	r := p.R()
	if r > 0 {
		cosPhi := p.GPos.At(0) / r
		sinPhi := p.GPos.At(1) / r
		p.Acc = geom.Vec2{
			shadow.Acc.At(0)*cosPhi + shadow.Acc.At(1)*sinPhi,
			shadow.Acc.At(2),
		}
	} else {
		// On the axis only the vertical component survives projection.
		p.Acc = geom.Vec2{0, shadow.Acc.At(2)}
	}
}
