package group

import (
	"fmt"
)

// Snapshot is an order-preserving copy of a container's groups. Only the
// particle tags of each group are stored; link slots are derived state.
type Snapshot struct {
	Groups      [][]uint32 `json:"groups"`
	TypeIDs     []uint32   `json:"type_ids"`
	TypeMapping []string   `json:"type_mapping"`
}

// Validate checks the snapshot's shape for groups with nTags tags. Nil
// slices are replaced with empty ones, the form TakeSnapshot returns.
func (s *Snapshot) Validate(nTags int) error {
	if s.Groups == nil { s.Groups = [][]uint32{} }
	if s.TypeIDs == nil { s.TypeIDs = []uint32{} }
	if s.TypeMapping == nil { s.TypeMapping = []string{} }

	if len(s.Groups) != len(s.TypeIDs) {
		return fmt.Errorf(
			"%d groups but %d type ids: %w",
			len(s.Groups), len(s.TypeIDs), ErrSnapshot,
		)
	}
	for i, g := range s.Groups {
		if len(g) != nTags {
			return fmt.Errorf(
				"group %d has %d tags, expected %d: %w",
				i, len(g), nTags, ErrSnapshot,
			)
		}
		if int64(s.TypeIDs[i]) >= int64(len(s.TypeMapping)) {
			return fmt.Errorf(
				"group %d has type %d, but there are %d types: %w",
				i, s.TypeIDs[i], len(s.TypeMapping), ErrSnapshot,
			)
		}
	}
	return nil
}

// TakeSnapshot copies the groups, in index order, into a Snapshot.
func (d *Data) TakeSnapshot() Snapshot {
	s := Snapshot{
		Groups:      make([][]uint32, len(d.members)),
		TypeIDs:     d.TypeValArray(),
		TypeMapping: d.TypeMapping(),
	}
	for i := range d.members {
		s.Groups[i] = append([]uint32{}, d.members[i][:d.nTags]...)
	}
	return s
}

// InitializeFromSnapshot replaces the contents of d with the groups in s.
// Link slots are set to Unlinked and group tags restart at zero. Nothing
// is changed if s is invalid.
func (d *Data) InitializeFromSnapshot(s *Snapshot) error {
	if err := s.Validate(d.nTags); err != nil {
		return fmt.Errorf("%s: %w", d.name, err)
	}

	members := make([]Members, len(s.Groups))
	for i, g := range s.Groups {
		m := &members[i]
		copy(m[:d.nTags], g)
		for j := d.nTags; j < d.nTags+d.nLinks; j++ { m[j] = Unlinked }
		if err := d.check(m); err != nil {
			return fmt.Errorf("%s %d: %w", d.name, i, err)
		}
	}

	d.typeNames = append([]string{}, s.TypeMapping...)
	d.members = members
	d.typeIDs = append([]uint32{}, s.TypeIDs...)
	d.groupTags = make([]uint32, len(members))
	d.rtag = make(map[uint32]int, len(members))
	for i := range members {
		d.groupTags[i] = uint32(i)
		d.rtag[uint32(i)] = i
	}
	d.nextTag = uint32(len(members))
	d.touch()

	return nil
}
