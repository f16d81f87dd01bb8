package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

const ExampleConfigFile = `[Run]

#######################
# Required Parameters #
#######################

# Number of timesteps to run.
Steps = 100

# Timestep size in code units.
TimeStep = 0.001

# Expected neighbor count per particle. The neighbor collector capacity is
# this value times a fixed safety factor, so transiently dense regions do
# not truncate.
NeighborNumber = 32

#######################
# Optional Parameters #
#######################

# Input is a whitespace-separated particle table with columns
# x y z mass smoothing-length. If unset, a uniform lattice with NSide^3
# particles is generated instead.
# Input = path/to/particles.txt
# NSide = 16

# Snapshot file written when the run finishes.
# Output = snapshot.txt

# Adiabatic index of the ideal-gas equation of state. Default is 5/3.
# Gamma = 1.6667

# Smoothing kernel: CubicSpline or WendlandC4.
# Kernel = CubicSpline

# Output files which are useful for profiling and debugging. Generally,
# there isn't a reason to use these unless something goes wrong.
# LogFile = log.out
# ProfileFile = prof.out

# Radial density profile plot, written as a pyplot script.
# PlotFile = profile.png

[Tree]

# Hard cap on subdivision depth. Prevents infinite recursion when many
# particles share a position.
MaxLevel = 20

# Maximum particles a leaf may hold before it is split.
LeafParticleNum = 1

# Node pool size relative to the particle count. Default is 5.
# NodePoolFactor = 5

[Gravity]

# Self-gravity is off unless enabled here.
Enabled = true

# Gravitational constant in code units.
Constant = 1.0

# Barnes-Hut opening angle. Zero forces exact evaluation.
Theta = 0.5

[Periodic]

# Periodic boundaries are off unless enabled here. RangeMin and RangeMax
# are given once per axis, in axis order.
# Enabled = true
# RangeMin = 0.0
# RangeMin = 0.0
# RangeMin = 0.0
# RangeMax = 1.0
# RangeMax = 1.0
# RangeMax = 1.0
`

// RunConfig is the [Run] section: everything about one simulation run
// that is not spatial-tree or physics geometry.
type RunConfig struct {
	Steps          int
	TimeStep       float64
	NeighborNumber int
	Input          string
	NSide          int
	Output         string
	Gamma          float64
	Kernel         string
	LogFile        string
	ProfileFile    string
	PlotFile       string
}

// TreeConfig is the [Tree] section.
type TreeConfig struct {
	MaxLevel        int
	LeafParticleNum int
	NodePoolFactor  int
}

// GravityConfig is the [Gravity] section.
type GravityConfig struct {
	Enabled  bool
	Constant float64
	Theta    float64
}

// PeriodicConfig is the [Periodic] section. RangeMin and RangeMax are
// repeated once per axis.
type PeriodicConfig struct {
	Enabled  bool
	RangeMin []float64
	RangeMax []float64
}

// ConfigFile is the parsed form of a gosph config file.
type ConfigFile struct {
	Run      RunConfig
	Tree     TreeConfig
	Gravity  GravityConfig
	Periodic PeriodicConfig
}

// DefaultConfig returns a config with every optional parameter at its
// default.
func DefaultConfig() *ConfigFile {
	return &ConfigFile{
		Run: RunConfig{
			NSide:  16,
			Gamma:  5.0 / 3.0,
			Kernel: "CubicSpline",
		},
		Tree: TreeConfig{
			MaxLevel:        20,
			LeafParticleNum: 1,
			NodePoolFactor:  0,
		},
		Gravity: GravityConfig{Theta: 0.5},
	}
}

// ReadConfig parses and validates the config file at fname. Invalid
// parameters fail here, before any simulation state is created.
func ReadConfig(fname string) (*ConfigFile, error) {
	cfg := DefaultConfig()
	if err := gcfg.ReadFileInto(cfg, fname); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every cross-field invariant the sections cannot check
// alone.
func (cfg *ConfigFile) Validate() error {
	run, tr, grav, per := &cfg.Run, &cfg.Tree, &cfg.Gravity, &cfg.Periodic

	if run.Steps <= 0 {
		return fmt.Errorf("config: Steps must be positive, got %d", run.Steps)
	}
	if run.TimeStep <= 0 {
		return fmt.Errorf("config: TimeStep must be positive, got %g",
			run.TimeStep)
	}
	if run.NeighborNumber <= 0 {
		return fmt.Errorf("config: NeighborNumber must be positive, got %d",
			run.NeighborNumber)
	}
	if run.Input == "" && run.NSide <= 0 {
		return fmt.Errorf("config: NSide must be positive, got %d", run.NSide)
	}
	if run.Gamma <= 1 {
		return fmt.Errorf("config: Gamma must exceed 1, got %g", run.Gamma)
	}
	switch run.Kernel {
	case "CubicSpline", "WendlandC4":
	default:
		return fmt.Errorf("config: unknown Kernel %q", run.Kernel)
	}

	if tr.MaxLevel <= 0 {
		return fmt.Errorf("config: MaxLevel must be positive, got %d",
			tr.MaxLevel)
	}
	if tr.LeafParticleNum <= 0 {
		return fmt.Errorf("config: LeafParticleNum must be positive, got %d",
			tr.LeafParticleNum)
	}

	if grav.Enabled && grav.Theta < 0 {
		return fmt.Errorf("config: Theta must be non-negative, got %g",
			grav.Theta)
	}

	if per.Enabled {
		if len(per.RangeMin) != len(per.RangeMax) {
			return fmt.Errorf(
				"config: %d RangeMin values but %d RangeMax values",
				len(per.RangeMin), len(per.RangeMax),
			)
		}
		if len(per.RangeMin) < 1 || len(per.RangeMin) > 3 {
			return fmt.Errorf(
				"config: periodic range must cover 1 to 3 axes, got %d",
				len(per.RangeMin),
			)
		}
		for k := range per.RangeMin {
			if per.RangeMax[k] <= per.RangeMin[k] {
				return fmt.Errorf(
					"config: periodic range [%g, %g] on axis %d is empty",
					per.RangeMin[k], per.RangeMax[k], k,
				)
			}
		}
	}

	return nil
}
