/*package kernel provides the smoothing kernels used for SPH summation.

Both kernels are compactly supported on r < h, where h is the particle's
smoothing length, matching the radius used by the tree's neighbor search.
*/
package kernel

import (
	"fmt"
	"math"
)

// Kernel is a radially symmetric smoothing function. W is the kernel
// weight at separation r for smoothing length h, and DW is dW/dr. Both
// vanish for r >= h.
type Kernel interface {
	W(r, h float64) float64
	DW(r, h float64) float64
}

type cubicSpline struct {
	dim   int
	sigma float64
}

// CubicSpline returns the M4 cubic spline kernel for the given dimension.
// Panics if dim is outside {1, 2, 3}.
func CubicSpline(dim int) Kernel {
	var sigma float64
	switch dim {
	case 1:
		sigma = 4.0 / 3.0
	case 2:
		sigma = 40.0 / (7.0 * math.Pi)
	case 3:
		sigma = 8.0 / math.Pi
	default:
		panic(fmt.Sprintf("kernel: unsupported dimension %d", dim))
	}
	return &cubicSpline{dim, sigma}
}

func (k *cubicSpline) W(r, h float64) float64 {
	q := r / h
	var w float64
	switch {
	case q < 0.5:
		w = 1 - 6*q*q + 6*q*q*q
	case q < 1:
		u := 1 - q
		w = 2 * u * u * u
	default:
		return 0
	}
	return k.sigma / hpow(h, k.dim) * w
}

func (k *cubicSpline) DW(r, h float64) float64 {
	q := r / h
	var dw float64
	switch {
	case q < 0.5:
		dw = -12*q + 18*q*q
	case q < 1:
		u := 1 - q
		dw = -6 * u * u
	default:
		return 0
	}
	return k.sigma / hpow(h, k.dim+1) * dw
}

type wendlandC4 struct {
	dim   int
	sigma float64
}

// WendlandC4 returns the Wendland C4 kernel for the given dimension.
// Panics if dim is outside {1, 2, 3}.
func WendlandC4(dim int) Kernel {
	var sigma float64
	switch dim {
	case 1:
		sigma = 3.0 / 2.0
	case 2:
		sigma = 9.0 / math.Pi
	case 3:
		sigma = 495.0 / (32.0 * math.Pi)
	default:
		panic(fmt.Sprintf("kernel: unsupported dimension %d", dim))
	}
	return &wendlandC4{dim, sigma}
}

func (k *wendlandC4) W(r, h float64) float64 {
	q := r / h
	if q >= 1 {
		return 0
	}
	u := 1 - q
	var w float64
	if k.dim == 1 {
		w = u * u * u * u * u * (1 + 5*q + 8*q*q)
	} else {
		u2 := u * u
		w = u2 * u2 * u2 * (1 + 6*q + 35.0/3.0*q*q)
	}
	return k.sigma / hpow(h, k.dim) * w
}

func (k *wendlandC4) DW(r, h float64) float64 {
	q := r / h
	if q >= 1 {
		return 0
	}
	u := 1 - q
	var dw float64
	if k.dim == 1 {
		dw = -14 * q * (1 + 4*q) * u * u * u * u
	} else {
		dw = -56.0 / 3.0 * q * (1 + 5*q) * u * u * u * u * u
	}
	return k.sigma / hpow(h, k.dim+1) * dw
}

func hpow(h float64, n int) float64 {
	x := h
	for i := 1; i < n; i++ {
		x *= h
	}
	return x
}
