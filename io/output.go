package io

import (
	"bufio"
	"fmt"
	"os"

	"github.com/phil-mansfield/gosph/geom"
	"github.com/phil-mansfield/gosph/particle"
)

// WriteSnapshot writes particles as a whitespace-separated text table:
// id, position, velocity, mass, density, potential. The column layout
// follows the vector dimension.
func WriteSnapshot[V geom.Vector[V]](
	fname string, parts []particle.Particle[V],
) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var z V
	dim := z.Dim()

	fmt.Fprintf(w, "# id")
	for k := 0; k < dim; k++ {
		fmt.Fprintf(w, " x%d", k)
	}
	for k := 0; k < dim; k++ {
		fmt.Fprintf(w, " v%d", k)
	}
	fmt.Fprintf(w, " mass dens phi\n")

	for i := range parts {
		p := &parts[i]
		fmt.Fprintf(w, "%d", p.ID)
		for k := 0; k < dim; k++ {
			fmt.Fprintf(w, " %.10g", p.Pos.At(k))
		}
		for k := 0; k < dim; k++ {
			fmt.Fprintf(w, " %.10g", p.Vel.At(k))
		}
		fmt.Fprintf(w, " %.10g %.10g %.10g\n", p.Mass, p.Dens, p.Phi)
	}

	return w.Flush()
}
