// Package gomesh manages the bonded topology of triangulated membranes in
// a particle simulation. MeshData owns the mesh bonds and mesh triangles
// bound to one particle table and round-trips them through snapshots.
package gomesh

import (
	"fmt"
	"log"
	"time"

	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/mesh"
	"github.com/phil-mansfield/gomesh/particle"
)

// MeshData owns one bond container and one triangle container bound to the
// same particle table. The particle table must outlive the MeshData.
type MeshData struct {
	pdata *particle.Data
	bonds *mesh.BondData
	tris  *mesh.TriangleData

	// settings carried over when the containers are rebuilt
	metrics *group.Metrics
	workers int
	log     bool
}

// NewMeshData creates a mesh with no triangles and nTriangleTypes
// triangle types. Bonds get the same number of types.
func NewMeshData(pdata *particle.Data, nTriangleTypes int) *MeshData {
	return &MeshData{
		pdata:   pdata,
		bonds:   mesh.NewBondData(pdata, nTriangleTypes),
		tris:    mesh.NewTriangleData(pdata, nTriangleTypes),
		workers: 1,
	}
}

// NewMeshDataFromSnapshot creates a mesh and derives its bonds from the
// triangles in snap.
func NewMeshDataFromSnapshot(
	pdata *particle.Data, snap *mesh.TriangleSnapshot,
) (*MeshData, error) {
	md := NewMeshData(pdata, 0)
	if err := md.InitializeFromSnapshot(snap); err != nil { return nil, err }
	return md, nil
}

// SetLog turns progress logging on or off.
func (md *MeshData) SetLog(flag bool) { md.log = flag }

// SetMetrics attaches table rebuild metrics to both containers.
func (md *MeshData) SetMetrics(m *group.Metrics) {
	md.metrics = m
	md.bonds.SetMetrics(m)
	md.tris.SetMetrics(m)
}

// SetWorkers sets the number of workers used for table rebuilds. See
// group.Data.SetWorkers.
func (md *MeshData) SetWorkers(n int) {
	md.bonds.SetWorkers(n)
	md.tris.SetWorkers(n)
	md.workers = n
}

func (md *MeshData) Particles() *particle.Data { return md.pdata }
func (md *MeshData) BondData() *mesh.BondData { return md.bonds }
func (md *MeshData) TriangleData() *mesh.TriangleData { return md.tris }

// InitializeFromSnapshot replaces the mesh with the one described by
// snap. Bonds are derived again, so the result depends only on snap. If
// snap cannot be built the mesh is left unchanged.
func (md *MeshData) InitializeFromSnapshot(snap *mesh.TriangleSnapshot) error {
	start := time.Now()

	bonds, tris, err := mesh.New(md.pdata, snap)
	if err != nil { return err }

	md.bonds, md.tris = bonds, tris
	md.bonds.SetWorkers(md.workers)
	md.tris.SetWorkers(md.workers)
	md.SetMetrics(md.metrics)

	if md.log {
		log.Printf(
			"Built mesh: %d %ss, %d %ss (%d on a boundary) in %s",
			tris.N(), mesh.TriangleName, bonds.N(), mesh.BondName,
			len(bonds.Boundary()), time.Since(start),
		)
	}
	return nil
}

// Snapshot returns the triangles of the mesh in index order.
func (md *MeshData) Snapshot() mesh.TriangleSnapshot {
	return md.tris.Snapshot()
}

// TakeSnapshot writes the mesh and the live particle tags into sys. Bonds
// are not written.
func (md *MeshData) TakeSnapshot(sys *SystemSnapshot) {
	sys.Particles = md.pdata.NGlobal()
	sys.Tags = md.pdata.Tags()
	sys.Triangles = md.Snapshot()
}

// Tables returns up-to-date per-particle tables for bonds and triangles,
// rebuilding whichever is stale.
func (md *MeshData) Tables() (bonds, tris *group.Table, err error) {
	if bonds, err = md.bonds.Table(); err != nil { return nil, nil, err }
	if tris, err = md.tris.Table(); err != nil { return nil, nil, err }
	return bonds, tris, nil
}

// Validate checks that every group refers to live particles and that the
// bond and triangle links agree.
func (md *MeshData) Validate() error {
	if err := md.bonds.Validate(); err != nil { return err }
	if err := md.tris.Validate(); err != nil { return err }
	if err := mesh.Verify(md.bonds, md.tris); err != nil {
		return fmt.Errorf("inconsistent mesh: %w", err)
	}
	return nil
}
