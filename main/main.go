package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/phil-mansfield/gosph/geom"
	gio "github.com/phil-mansfield/gosph/io"
	"github.com/phil-mansfield/gosph/kernel"
	"github.com/phil-mansfield/gosph/particle"
	"github.com/phil-mansfield/gosph/sph"
	"github.com/phil-mansfield/gosph/tree"
)

func main() {
	var (
		configFile    string
		exampleConfig bool
	)

	flag.StringVar(
		&configFile, "Config", "",
		"Configuration file describing the run. See -ExampleConfig for "+
			"the format.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Print an example configuration file and exit.",
	)
	flag.Parse()

	if exampleConfig {
		fmt.Println(gio.ExampleConfigFile)
		return
	}
	if configFile == "" {
		log.Fatalf("Usage: $ %s -Config=path/to/config", os.Args[0])
	}

	cfg, err := gio.ReadConfig(configFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	if cfg.Run.LogFile != "" {
		f, err := os.Create(cfg.Run.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}
	if cfg.Run.ProfileFile != "" {
		f, err := os.Create(cfg.Run.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err.Error())
	}
}

func run(cfg *gio.ConfigFile) error {
	parts, err := readParticles(&cfg.Run)
	if err != nil {
		return err
	}
	log.Printf("%d particles read.", len(parts))

	var per *geom.Periodic[geom.Vec3]
	if cfg.Periodic.Enabled {
		min, max, err := periodicRange3D(&cfg.Periodic)
		if err != nil {
			return err
		}
		per, err = geom.NewPeriodic(min, max)
		if err != nil {
			return err
		}
	}

	t, err := tree.New(tree.Options[geom.Vec3]{
		MaxLevel:        cfg.Tree.MaxLevel,
		LeafParticleNum: cfg.Tree.LeafParticleNum,
		Periodic:        per,
		Gravity: tree.GravityOptions{
			Enabled: cfg.Gravity.Enabled,
			G:       cfg.Gravity.Constant,
			Theta:   cfg.Gravity.Theta,
		},
	})
	if err != nil {
		return err
	}
	t.Resize(len(parts), cfg.Tree.NodePoolFactor)

	searchCfg, err := tree.NewSearchConfig(cfg.Run.NeighborNumber, false)
	if err != nil {
		return err
	}

	var k kernel.Kernel
	if cfg.Run.Kernel == "WendlandC4" {
		k = kernel.WendlandC4(3)
	} else {
		k = kernel.CubicSpline(3)
	}

	solver, err := sph.NewSolver(
		t, k, per, searchCfg, cfg.Run.Gamma, cfg.Run.TimeStep, parts,
	)
	if err != nil {
		return err
	}

	for step := 1; step <= cfg.Run.Steps; step++ {
		truncated, err := solver.Step()
		if err != nil {
			return err
		}
		if truncated > 0 {
			log.Printf(
				"step %d: %d truncated neighbor lists", step, truncated,
			)
		}
		if step%10 == 0 || step == cfg.Run.Steps {
			log.Printf("step %d/%d: E = %.6g",
				step, cfg.Run.Steps, solver.TotalEnergy())
		}
	}

	if cfg.Run.Output != "" {
		if err := gio.WriteSnapshot(cfg.Run.Output, parts); err != nil {
			return err
		}
		log.Printf("Snapshot written to %s.", cfg.Run.Output)
	}
	if cfg.Run.PlotFile != "" {
		plotProfile(parts, cfg.Run.PlotFile)
	}
	return nil
}

func readParticles(run *gio.RunConfig) ([]particle.Particle3D, error) {
	if run.Input != "" {
		return gio.ReadParticles3D(run.Input)
	}
	return gio.Lattice3D(run.NSide), nil
}

func periodicRange3D(per *gio.PeriodicConfig) (min, max geom.Vec3, err error) {
	if len(per.RangeMin) != 3 {
		return min, max, fmt.Errorf(
			"config: 3D run needs 3 periodic axes, got %d", len(per.RangeMin),
		)
	}
	for k := 0; k < 3; k++ {
		min = min.With(k, per.RangeMin[k])
		max = max.With(k, per.RangeMax[k])
	}
	return min, max, nil
}
