package mesh

import (
	"fmt"

	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/particle"
)

// Triangle is a mesh face. Bonds holds the indices of the bonds along the
// edges (Tags[0], Tags[1]), (Tags[0], Tags[2]) and (Tags[1], Tags[2]).
type Triangle struct {
	Type  uint32
	Tags  [3]uint32
	Bonds [3]uint32
}

func (t *Triangle) members() group.Members {
	return group.Members{
		t.Tags[0], t.Tags[1], t.Tags[2], t.Bonds[0], t.Bonds[1], t.Bonds[2],
	}
}

func triangleFrom(typ uint32, m group.Members) Triangle {
	return Triangle{
		typ, [3]uint32{m[0], m[1], m[2]}, [3]uint32{m[3], m[4], m[5]},
	}
}

// Edges returns the vertex pairs of the triangle in bond order.
func (t *Triangle) Edges() [3][2]uint32 {
	a, b, c := t.Tags[0], t.Tags[1], t.Tags[2]
	return [3][2]uint32{{a, b}, {a, c}, {b, c}}
}

// TriangleData stores mesh triangles.
type TriangleData struct {
	*group.Data
}

var _ group.Indexed = (*TriangleData)(nil)

// NewTriangleData creates an empty triangle container with nTypes
// triangle types.
func NewTriangleData(pdata *particle.Data, nTypes int) *TriangleData {
	return &TriangleData{ group.NewData(pdata, TriangleName, 3, 3, nTypes) }
}

// Add appends a triangle and returns its index.
func (td *TriangleData) Add(t Triangle) (int, error) {
	return td.Data.Add(t.Type, t.members())
}

// Triangle returns the triangle at index i.
func (td *TriangleData) Triangle(i int) (Triangle, error) {
	m, err := td.MembersByIndex(i)
	if err != nil { return Triangle{}, err }
	typ, _ := td.TypeByIndex(i)
	return triangleFrom(typ, m), nil
}

// SetTriangle replaces the bond links of triangle i. The tags and type of
// t must match the stored triangle.
func (td *TriangleData) SetTriangle(i int, t Triangle) error {
	typ, err := td.TypeByIndex(i)
	if err != nil { return err }
	if typ != t.Type {
		return fmt.Errorf(
			"%s %d has type %d, not %d: %w", TriangleName, i, typ, t.Type,
			group.ErrMembers,
		)
	}
	return td.SetMembersByIndex(i, t.members())
}

// Remove is not supported on triangles: it shifts later triangle
// indices, which bonds refer to.
func (td *TriangleData) Remove(tag uint32) error {
	return linkedError(TriangleName, "Remove")
}

// InitializeFromSnapshot is not supported on triangles alone, since it
// would leave every bond slot unlinked. Use New or Build.
func (td *TriangleData) InitializeFromSnapshot(s *group.Snapshot) error {
	return linkedError(TriangleName, "InitializeFromSnapshot")
}

// Clear is not supported on triangles alone, since bonds would still
// refer to them.
func (td *TriangleData) Clear() error {
	return linkedError(TriangleName, "Clear")
}

// Snapshot returns the triangles, in index order, as a TriangleSnapshot.
func (td *TriangleData) Snapshot() TriangleSnapshot {
	gs := td.TakeSnapshot()
	s, err := TriangleSnapshotFrom(&gs)
	if err != nil { panic(err) }
	return s
}
