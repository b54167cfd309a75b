package gomesh

import (
	"fmt"

	"github.com/phil-mansfield/gomesh/mesh"
	"github.com/phil-mansfield/gomesh/particle"
)

// SystemSnapshot is the part of a full system snapshot this package reads
// and writes.
type SystemSnapshot struct {
	Particles int                   `json:"particles"` // tags issued
	Tags      []uint32              `json:"tags"`      // live tags, nil if all are live
	Triangles mesh.TriangleSnapshot `json:"triangles"`
}

// Restore creates a particle table and a mesh built from sys.Triangles.
// The table has issued sys.Particles tags. If sys.Tags is nil every tag is
// live, otherwise only the listed ones are, in the listed order.
func (sys *SystemSnapshot) Restore() (*particle.Data, *MeshData, error) {
	if sys.Particles < 0 {
		return nil, nil, fmt.Errorf(
			"snapshot has a negative particle count, %d", sys.Particles,
		)
	}
	pdata := particle.NewData(sys.Particles)
	if sys.Tags != nil {
		var err error
		pdata, err = particle.NewDataFromTags(sys.Particles, sys.Tags)
		if err != nil { return nil, nil, err }
	}
	md, err := NewMeshDataFromSnapshot(pdata, &sys.Triangles)
	if err != nil { return nil, nil, err }
	return pdata, md, nil
}
