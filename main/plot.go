package main

import (
	"math"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
)

const profileBins = 64

// plotProfile writes a pyplot script plotting the mean SPH density as a
// function of radius from the box center.
func plotProfile(parts []particle.Particle3D, fname string) {
	center := geom.Vec3{0.5, 0.5, 0.5}

	rMax := 0.0
	rs := make([]float64, len(parts))
	for i := range parts {
		rs[i] = geom.Dist(parts[i].Pos, center)
		if rs[i] > rMax {
			rMax = rs[i]
		}
	}
	if rMax == 0 {
		return
	}

	binRs := make([]float64, profileBins)
	binDens := make([]float64, profileBins)
	counts := make([]int, profileBins)
	dr := rMax / profileBins

	for i := range parts {
		bin := int(rs[i] / dr)
		if bin >= profileBins {
			bin = profileBins - 1
		}
		binDens[bin] += parts[i].Dens
		counts[bin]++
	}
	for bin := 0; bin < profileBins; bin++ {
		binRs[bin] = (float64(bin) + 0.5) * dr
		if counts[bin] > 0 {
			binDens[bin] /= float64(counts[bin])
		} else {
			binDens[bin] = math.NaN()
		}
	}

	plt.Figure()
	plt.Plot(binRs, binDens, "k", plt.LW(2))
	plt.XLabel(`$r$`, plt.FontSize(16))
	plt.YLabel(`$\rho$`, plt.FontSize(16))
	plt.Title("SPH density profile")
	plt.SaveFig(fname)
	plt.Execute()
}
