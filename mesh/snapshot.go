package mesh

import (
	"fmt"

	"github.com/phil-mansfield/gomesh/group"
)

// TriangleSnapshot is the serialised form of a mesh: the triangles in
// order, their types and the type names. Bonds are not stored; Build
// derives them again on load.
type TriangleSnapshot struct {
	Groups      [][3]uint32 `json:"groups"`
	TypeIDs     []uint32    `json:"type_ids"`
	TypeMapping []string    `json:"type_mapping"`
}

// Len returns the number of triangles.
func (s *TriangleSnapshot) Len() int { return len(s.Groups) }

// Validate checks that every triangle has a type and that every type id
// has a name. Nil slices are replaced with empty ones, the form
// TriangleData.Snapshot returns.
func (s *TriangleSnapshot) Validate() error {
	if s.Groups == nil { s.Groups = [][3]uint32{} }
	if s.TypeIDs == nil { s.TypeIDs = []uint32{} }
	if s.TypeMapping == nil { s.TypeMapping = []string{} }

	gs := s.GroupSnapshot()
	return gs.Validate(3)
}

// Copy returns a deep copy of s.
func (s *TriangleSnapshot) Copy() TriangleSnapshot {
	return TriangleSnapshot{
		Groups:      append([][3]uint32{}, s.Groups...),
		TypeIDs:     append([]uint32{}, s.TypeIDs...),
		TypeMapping: append([]string{}, s.TypeMapping...),
	}
}

// GroupSnapshot converts s into the generic group snapshot layout.
func (s *TriangleSnapshot) GroupSnapshot() group.Snapshot {
	gs := group.Snapshot{
		Groups:      make([][]uint32, len(s.Groups)),
		TypeIDs:     append([]uint32{}, s.TypeIDs...),
		TypeMapping: append([]string{}, s.TypeMapping...),
	}
	for i := range s.Groups {
		gs.Groups[i] = []uint32{ s.Groups[i][0], s.Groups[i][1], s.Groups[i][2] }
	}
	return gs
}

// TriangleSnapshotFrom converts a generic snapshot of three-tag groups.
func TriangleSnapshotFrom(gs *group.Snapshot) (TriangleSnapshot, error) {
	if err := gs.Validate(3); err != nil {
		return TriangleSnapshot{}, fmt.Errorf("%s: %w", TriangleName, err)
	}
	s := TriangleSnapshot{
		Groups:      make([][3]uint32, len(gs.Groups)),
		TypeIDs:     append([]uint32{}, gs.TypeIDs...),
		TypeMapping: append([]string{}, gs.TypeMapping...),
	}
	for i, g := range gs.Groups { copy(s.Groups[i][:], g) }
	return s, nil
}
