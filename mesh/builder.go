package mesh

import (
	"fmt"

	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/particle"
)

// TopologyError reports a triangle that cannot be added to a manifold
// mesh.
type TopologyError struct {
	Triangle int
	Edge     [2]uint32
	Err      error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf(
		"%s %d, edge (%d, %d): %s",
		TriangleName, e.Triangle, e.Edge[0], e.Edge[1], e.Err.Error(),
	)
}

func (e *TopologyError) Unwrap() error { return e.Err }

// edgeKey identifies an undirected edge by its ordered tag pair.
type edgeKey [2]uint32

func newEdgeKey(a, b uint32) edgeKey {
	if a > b { return edgeKey{b, a} }
	return edgeKey{a, b}
}

// New creates bond and triangle containers with one type per entry in
// snap.TypeMapping and builds the mesh described by snap into them.
func New(
	pdata *particle.Data, snap *TriangleSnapshot,
) (*BondData, *TriangleData, error) {
	n := len(snap.TypeMapping)
	bd, td := NewBondData(pdata, n), NewTriangleData(pdata, n)
	if err := Build(snap, bd, td); err != nil { return nil, nil, err }
	return bd, td, nil
}

// Build fills the empty containers bd and td with the mesh described by
// snap. Triangles keep their snapshot order. Each distinct edge becomes
// one bond, created by the first triangle that uses it, with the type of
// that triangle. Bond type names mirror triangle type names.
//
// An edge claimed by a third triangle or a triangle with a repeated
// vertex is reported as a *TopologyError. On any error bd and td are left
// partially filled and should be discarded.
func Build(snap *TriangleSnapshot, bd *BondData, td *TriangleData) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%s: %w", TriangleName, err)
	} else if bd.N() != 0 || td.N() != 0 {
		return ErrNotEmpty
	} else if bd.NTypes() != len(snap.TypeMapping) ||
		td.NTypes() != len(snap.TypeMapping) {
		return fmt.Errorf(
			"snapshot has %d types, but containers have %d bond types and "+
				"%d triangle types", len(snap.TypeMapping),
			bd.NTypes(), td.NTypes(),
		)
	}

	for typ, name := range snap.TypeMapping {
		if err := td.SetTypeName(uint32(typ), name); err != nil { return err }
		if err := bd.SetTypeName(uint32(typ), name); err != nil { return err }
	}

	edges := make(map[edgeKey]int, 3*len(snap.Groups)/2)
	for ti, tags := range snap.Groups {
		tri := Triangle{ Type: snap.TypeIDs[ti], Tags: tags }
		if err := linkTriangle(ti, &tri, edges, bd); err != nil { return err }

		if _, err := td.Add(tri); err != nil {
			return fmt.Errorf("%s %d: %w", TriangleName, ti, err)
		}
	}

	return nil
}

// linkTriangle finds or creates the bond of each edge of tri and stores
// the bond indices in tri.Bonds.
func linkTriangle(
	ti int, tri *Triangle, edges map[edgeKey]int, bd *BondData,
) error {
	edgeList := tri.Edges()
	for _, e := range edgeList {
		if e[0] == e[1] { return &TopologyError{ ti, e, ErrDegenerate } }
	}

	for k, e := range edgeList {
		key := newEdgeKey(e[0], e[1])
		bi, ok := edges[key]
		if ok {
			if err := bd.link(bi, uint32(ti)); err != nil {
				return &TopologyError{ ti, e, err }
			}
		} else {
			var err error
			bi, err = bd.Add(Bond{
				tri.Type, e, [2]uint32{uint32(ti), group.Unlinked},
			})
			if err != nil {
				return fmt.Errorf("%s %d: %w", TriangleName, ti, err)
			}
			edges[key] = bi
		}

		tri.Bonds[k] = uint32(bi)
	}
	return nil
}

// Verify checks the links between bd and td: every triangle's bonds join
// exactly its edges and list the triangle, and every bond is listed by
// each triangle it links to.
func Verify(bd *BondData, td *TriangleData) error {
	for ti := 0; ti < td.N(); ti++ {
		tri, _ := td.Triangle(ti)
		for k, e := range tri.Edges() {
			b, err := bd.Bond(int(tri.Bonds[k]))
			if err != nil {
				return fmt.Errorf("%s %d, bond slot %d: %w", TriangleName, ti, k, err)
			}
			if !b.Has(e[0], e[1]) {
				return fmt.Errorf(
					"%s %d, bond slot %d: %s %d joins (%d, %d), not (%d, %d)",
					TriangleName, ti, k, BondName, tri.Bonds[k],
					b.Tags[0], b.Tags[1], e[0], e[1],
				)
			}
			if b.Triangles[0] != uint32(ti) && b.Triangles[1] != uint32(ti) {
				return fmt.Errorf(
					"%s %d does not link back to %s %d",
					BondName, tri.Bonds[k], TriangleName, ti,
				)
			}
		}
	}

	for bi := 0; bi < bd.N(); bi++ {
		b, _ := bd.Bond(bi)
		for _, ti := range b.Triangles {
			if ti == group.Unlinked { continue }
			tri, err := td.Triangle(int(ti))
			if err != nil {
				return fmt.Errorf("%s %d: %w", BondName, bi, err)
			}
			if tri.Bonds[0] != uint32(bi) && tri.Bonds[1] != uint32(bi) &&
				tri.Bonds[2] != uint32(bi) {
				return fmt.Errorf(
					"%s %d does not link back to %s %d",
					TriangleName, ti, BondName, bi,
				)
			}
		}
	}
	return nil
}
