package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phil-mansfield/gomesh"
	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/io"
	"github.com/phil-mansfield/gomesh/mesh"
	"github.com/phil-mansfield/gomesh/particle"
	"github.com/phil-mansfield/gomesh/store"
)

func main() {
	var (
		build, load   string
		exampleConfig string
	)
	modes := []mode{
		{"Build", &build}, {"Load", &load}, {"ExampleConfig", &exampleConfig},
	}

	flag.StringVar(
		&build, "Build", "",
		"Configuration file for [Build] mode: builds a mesh from a "+
			"triangle file.",
	)
	flag.StringVar(
		&load, "Load", "",
		"Configuration file for [Load] mode: rebuilds a mesh stored in "+
			"the configured Database.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Mesh'.",
	)

	flag.Parse()

	modeName, err := selectMode(modes)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Build":
		con := readConfig(build)
		if !con.ValidInput() {
			log.Fatal("Invalid/non-existent 'Input' value.")
		}
		buildMain(con)
	case "Load":
		con := readConfig(load)
		if !con.ValidDatabase() {
			log.Fatal("Invalid/non-existent 'Database' value.")
		}
		loadMain(con)
	case "ExampleConfig":
		switch exampleConfig {
		case "Mesh":
			fmt.Println(io.ExampleMeshFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Mesh'.",
			)
		}
	default:
		panic("Impossible")
	}
}

// mode is one command line flag that selects what gomesh does.
type mode struct {
	name string
	arg  *string
}

// selectMode returns the one mode whose flag was set. Modes are checked in
// order so that error messages list them the same way every run.
func selectMode(modes []mode) (string, error) {
	set := []string{}
	for _, m := range modes {
		if *m.arg != "" { set = append(set, "-"+m.name) }
	}

	switch len(set) {
	case 0:
		return "", fmt.Errorf("Set one of -Build, -Load or -ExampleConfig.")
	case 1:
		return set[0][1:], nil
	}
	return "", fmt.Errorf(
		"Only one mode can be run at a time, but %s were all set.",
		strings.Join(set, ", "),
	)
}

func readConfig(fname string) *io.MeshConfig {
	con, err := io.ReadMeshConfig(fname)
	if err != nil { log.Fatal(err.Error()) }

	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(f)
	}
	return con
}

func buildMain(con *io.MeshConfig) {
	snap, err := io.ReadTriangles(con.Input, con.TypeName)
	if err != nil { log.Fatal(err.Error()) }
	log.Printf("Read %d triangles from %s", snap.Len(), con.Input)

	n := con.Particles
	if !con.ValidParticles() { n = int(io.MaxTag(snap) + 1) }

	md := meshMain(con, particle.NewData(n), snap)

	if con.ValidDatabase() {
		s, err := store.Open(con.Database)
		if err != nil { log.Fatal(err.Error()) }
		defer s.Close()

		sys := &gomesh.SystemSnapshot{}
		md.TakeSnapshot(sys)
		err = s.Save(context.Background(), con.SnapshotName, &sys.Triangles)
		if err != nil { log.Fatal(err.Error()) }
		log.Printf("Saved '%s' to %s", con.SnapshotName, con.Database)
	}
}

func loadMain(con *io.MeshConfig) {
	s, err := store.Open(con.Database)
	if err != nil { log.Fatal(err.Error()) }
	defer s.Close()

	snap, err := s.Load(context.Background(), con.SnapshotName)
	if err != nil { log.Fatal(err.Error()) }
	log.Printf(
		"Loaded '%s' (%d triangles) from %s",
		con.SnapshotName, snap.Len(), con.Database,
	)

	n := con.Particles
	if !con.ValidParticles() { n = int(io.MaxTag(snap) + 1) }

	meshMain(con, particle.NewData(n), snap)
}

// meshMain builds the mesh, rebuilds its tables and writes the outputs
// common to both modes.
func meshMain(
	con *io.MeshConfig, pdata *particle.Data, snap *mesh.TriangleSnapshot,
) *gomesh.MeshData {
	reg := prometheus.NewRegistry()

	md := gomesh.NewMeshData(pdata, 0)
	md.SetLog(true)
	md.SetMetrics(group.NewMetrics(reg))
	md.SetWorkers(con.Workers)

	if err := md.InitializeFromSnapshot(snap); err != nil {
		log.Fatal(err.Error())
	}
	if err := md.Validate(); err != nil { log.Fatal(err.Error()) }

	bonds, tris, err := md.Tables()
	if err != nil { log.Fatal(err.Error()) }
	log.Printf(
		"Tables: at most %d %ss and %d %ss per particle",
		bonds.Indexer.H, mesh.BondName, tris.Indexer.H, mesh.TriangleName,
	)

	if con.ValidBondOutput() {
		f, err := os.Create(con.BondOutput)
		if err != nil { log.Fatal(err.Error()) }
		if err := io.WriteBonds(f, md.BondData()); err != nil {
			log.Fatal(err.Error())
		}
		if err := f.Close(); err != nil { log.Fatal(err.Error()) }
	}

	if con.ValidBondTableOutput() {
		writeTable(con.BondTableOutput, io.BondTable, md.BondData().Data)
	}
	if con.ValidTriangleTableOutput() {
		writeTable(
			con.TriangleTableOutput, io.TriangleTable, md.TriangleData().Data,
		)
	}

	if con.ValidMetricsFile() {
		if err := prometheus.WriteToTextfile(con.MetricsFile, reg); err != nil {
			log.Fatal(err.Error())
		}
	}

	return md
}

func writeTable(fname string, flag io.TableFlag, d *group.Data) {
	f, err := os.Create(fname)
	if err != nil { log.Fatal(err.Error()) }
	if err := io.WriteTable(flag, d, f); err != nil { log.Fatal(err.Error()) }
	if err := f.Close(); err != nil { log.Fatal(err.Error()) }
	log.Printf("Wrote %s table to %s", flag, fname)
}
