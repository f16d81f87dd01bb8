package geom

import (
	"fmt"
)

// Periodic computes minimum-image displacements for a rectangular periodic
// domain. The zero value is a valid non-periodic helper: all its methods
// fall back to plain Euclidean differences. This is the only place the
// spatial tree learns about boundary conditions.
type Periodic[V Vector[V]] struct {
	valid          bool
	min, max, span V
}

// NewPeriodic returns a helper for the domain [min, max) on every axis.
func NewPeriodic[V Vector[V]](min, max V) (*Periodic[V], error) {
	p := &Periodic[V]{valid: true, min: min, max: max, span: max.Sub(min)}
	for k := 0; k < min.Dim(); k++ {
		if p.span.At(k) <= 0 {
			return nil, fmt.Errorf(
				"geom: periodic range [%g, %g] on axis %d is empty",
				min.At(k), max.At(k), k,
			)
		}
	}
	return p, nil
}

// Valid returns true if p describes a periodic domain. A nil or zero-value
// helper is non-periodic.
func (p *Periodic[V]) Valid() bool { return p != nil && p.valid }

func (p *Periodic[V]) Min() V  { return p.min }
func (p *Periodic[V]) Max() V  { return p.max }
func (p *Periodic[V]) Span() V { return p.span }

// Displacement returns the minimum-image vector a - b. Each component is
// shifted by at most one domain span, which is exact as long as both
// positions lie inside the domain.
func (p *Periodic[V]) Displacement(a, b V) V {
	d := a.Sub(b)
	if !p.Valid() {
		return d
	}
	for k := 0; k < d.Dim(); k++ {
		w := p.span.At(k)
		if x := d.At(k); x > w*0.5 {
			d = d.With(k, x-w)
		} else if x < -w*0.5 {
			d = d.With(k, x+w)
		}
	}
	return d
}

// Distance returns the minimum-image distance between a and b.
func (p *Periodic[V]) Distance(a, b V) float64 {
	d := p.Displacement(a, b)
	return Norm(d)
}

// Wrap maps x back into the domain. Positions are assumed to drift by less
// than one span per step, so a single shift suffices.
func (p *Periodic[V]) Wrap(x V) V {
	if !p.Valid() {
		return x
	}
	for k := 0; k < x.Dim(); k++ {
		if c := x.At(k); c < p.min.At(k) {
			x = x.With(k, c+p.span.At(k))
		} else if c >= p.max.At(k) {
			x = x.With(k, c-p.span.At(k))
		}
	}
	return x
}
