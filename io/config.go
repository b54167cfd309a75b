package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

const (
	ExampleMeshFile = `[Mesh]

#######################
# Required Parameters #
#######################

# Text file listing the triangles of the mesh, one per line, as four
# whitespace-separated columns: type a b c. a, b, and c are particle tags.
# Lines starting with # are ignored. Only needed for -Build.
Input = path/to/triangles.txt

#######################
# Optional Parameters #
#######################

# Names of the triangle types, in type id order. Bonds get the same types.
# If no names are given, types are named A, B, C, ...
# TypeName = outer
# TypeName = inner

# Number of particles in the system. Defaults to one more than the largest
# tag in Input.
# Particles = 642

# SQLite database that built meshes are stored in and that -Load reads
# from, and the name of the mesh inside it.
# Database = meshes.db
# SnapshotName = vesicle

# Writes the derived bonds, one per line: type a b triangle0 triangle1.
# Missing triangles are written as -1.
# BondOutput = bonds.txt

# Write the per-particle bond and triangle tables in a little-endian binary
# format: a header followed by the group counts, entries, and positions.
# BondTableOutput = bonds.table
# TriangleTableOutput = triangles.table

# Writes table rebuild counters in the Prometheus text format.
# MetricsFile = gomesh.prom

# Number of workers used to rebuild the per-particle tables. 0 uses every
# CPU.
# Workers = 1

# LogFile = log.out`
)

type MeshConfig struct {
	// Required
	Input string

	// Optional
	TypeName []string
	Particles int
	Database, SnapshotName string
	BondOutput, MetricsFile string
	BondTableOutput, TriangleTableOutput string
	Workers int
	LogFile string
}

type MeshWrapper struct {
	Mesh MeshConfig
}

func DefaultMeshWrapper() *MeshWrapper {
	con := MeshConfig{}
	con.SnapshotName = "mesh"
	con.Workers = 1
	return &MeshWrapper{con}
}

func (con *MeshConfig) ValidInput() bool { return con.Input != "" }
func (con *MeshConfig) ValidParticles() bool { return con.Particles > 0 }
func (con *MeshConfig) ValidDatabase() bool { return con.Database != "" }
func (con *MeshConfig) ValidBondOutput() bool { return con.BondOutput != "" }
func (con *MeshConfig) ValidBondTableOutput() bool {
	return con.BondTableOutput != ""
}
func (con *MeshConfig) ValidTriangleTableOutput() bool {
	return con.TriangleTableOutput != ""
}
func (con *MeshConfig) ValidMetricsFile() bool { return con.MetricsFile != "" }
func (con *MeshConfig) ValidLogFile() bool { return con.LogFile != "" }

// CheckInit checks the values that are invalid in every mode.
func (con *MeshConfig) CheckInit() error {
	if con.Particles < 0 {
		return fmt.Errorf(
			"Particles must be non-negative, but is %d.", con.Particles,
		)
	} else if con.Workers < 0 {
		return fmt.Errorf(
			"Workers must be non-negative, but is %d.", con.Workers,
		)
	} else if con.SnapshotName == "" {
		return fmt.Errorf("SnapshotName cannot be empty.")
	}

	for i, name := range con.TypeName {
		if name == "" {
			return fmt.Errorf("TypeName %d is empty.", i)
		}
		for j := 0; j < i; j++ {
			if con.TypeName[j] == name {
				return fmt.Errorf("TypeName '%s' is given twice.", name)
			}
		}
	}

	return nil
}

// ReadMeshConfig reads and checks the [Mesh] section of a config file.
func ReadMeshConfig(fname string) (*MeshConfig, error) {
	wrap := DefaultMeshWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil { return nil, err }
	if err := wrap.Mesh.CheckInit(); err != nil { return nil, err }
	return &wrap.Mesh, nil
}

// ParseMeshConfig is ReadMeshConfig for a config held in a string.
func ParseMeshConfig(str string) (*MeshConfig, error) {
	wrap := DefaultMeshWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil { return nil, err }
	if err := wrap.Mesh.CheckInit(); err != nil { return nil, err }
	return &wrap.Mesh, nil
}
