// Package mesh holds the bonded groups of triangulated surfaces: mesh
// bonds (edges) that link back to the triangles sharing them, and mesh
// triangles that link forward to their three bonds. Build derives both
// from a list of triangles.
package mesh

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/particle"
)

const (
	BondName     = "meshbond"
	TriangleName = "meshtriangle"
)

var (
	ErrNonManifold = errors.New("edge is shared by more than two triangles")
	ErrDegenerate  = errors.New("triangle has a repeated vertex")
	ErrNotEmpty    = errors.New("mesh containers must be empty")
	ErrLinked      = errors.New("operation would break bond and triangle links")
)

func linkedError(name, op string) error {
	return fmt.Errorf(
		"%s %s: %w; rebuild both containers from a snapshot instead",
		name, op, ErrLinked,
	)
}

// Bond is an undirected mesh edge. Triangles holds the indices of the (at
// most two) triangles sharing the edge; group.Unlinked marks a free slot.
type Bond struct {
	Type      uint32
	Tags      [2]uint32
	Triangles [2]uint32
}

func (b *Bond) members() group.Members {
	return group.Members{ b.Tags[0], b.Tags[1], b.Triangles[0], b.Triangles[1] }
}

func bondFrom(typ uint32, m group.Members) Bond {
	return Bond{ typ, [2]uint32{m[0], m[1]}, [2]uint32{m[2], m[3]} }
}

// Has returns true if the bond connects tags a and b, in either order.
func (b *Bond) Has(a, c uint32) bool {
	return (b.Tags[0] == a && b.Tags[1] == c) ||
		(b.Tags[0] == c && b.Tags[1] == a)
}

// BondData stores mesh bonds.
type BondData struct {
	*group.Data
}

var _ group.Indexed = (*BondData)(nil)

// NewBondData creates an empty bond container with nTypes bond types.
func NewBondData(pdata *particle.Data, nTypes int) *BondData {
	return &BondData{ group.NewData(pdata, BondName, 2, 2, nTypes) }
}

// Add appends a bond and returns its index.
func (bd *BondData) Add(b Bond) (int, error) {
	return bd.Data.Add(b.Type, b.members())
}

// Bond returns the bond at index i.
func (bd *BondData) Bond(i int) (Bond, error) {
	m, err := bd.MembersByIndex(i)
	if err != nil { return Bond{}, err }
	typ, _ := bd.TypeByIndex(i)
	return bondFrom(typ, m), nil
}

// SetBond replaces the triangle links of bond i. The tags and type of b
// must match the stored bond.
func (bd *BondData) SetBond(i int, b Bond) error {
	typ, err := bd.TypeByIndex(i)
	if err != nil { return err }
	if typ != b.Type {
		return fmt.Errorf(
			"%s %d has type %d, not %d: %w", BondName, i, typ, b.Type,
			group.ErrMembers,
		)
	}
	return bd.SetMembersByIndex(i, b.members())
}

// Remove is not supported on bonds: it shifts later bond indices, which
// triangles refer to.
func (bd *BondData) Remove(tag uint32) error {
	return linkedError(BondName, "Remove")
}

// InitializeFromSnapshot is not supported on bonds. Bonds are derived
// from triangles by Build.
func (bd *BondData) InitializeFromSnapshot(s *group.Snapshot) error {
	return linkedError(BondName, "InitializeFromSnapshot")
}

// Clear is not supported on bonds alone, since triangles would still
// refer to them.
func (bd *BondData) Clear() error {
	return linkedError(BondName, "Clear")
}

// link records triangle tri in the first free triangle slot of bond i.
func (bd *BondData) link(i int, tri uint32) error {
	b, err := bd.Bond(i)
	if err != nil { return err }
	for k := range b.Triangles {
		if b.Triangles[k] == group.Unlinked {
			b.Triangles[k] = tri
			return bd.SetBond(i, b)
		}
	}
	return ErrNonManifold
}

// Incident returns the indices of the triangles linked to bond i.
func (bd *BondData) Incident(i int) ([]int, error) {
	b, err := bd.Bond(i)
	if err != nil { return nil, err }
	out := []int{}
	for _, tri := range b.Triangles {
		if tri != group.Unlinked { out = append(out, int(tri)) }
	}
	return out, nil
}

// Boundary returns the indices of bonds with fewer than two triangles.
func (bd *BondData) Boundary() []int {
	out := []int{}
	for i, m := range bd.MembersArray() {
		if m[2] == group.Unlinked || m[3] == group.Unlinked {
			out = append(out, i)
		}
	}
	return out
}
