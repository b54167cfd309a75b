// Package group stores bonded groups: fixed-size tuples of particle tags
// with a per-group type and optional link slots that refer to other
// groups. The per-particle lookup tables used by force computations are
// derived from this storage and rebuilt on demand (see table.go).
package group

import (
	"errors"
	"fmt"

	"github.com/phil-mansfield/gomesh/particle"
)

const (
	// MaxWidth is the largest number of slots (tags plus links) a group
	// record can hold.
	MaxWidth = 6
	// Unlinked marks an empty link slot.
	Unlinked = ^uint32(0)
)

var (
	ErrIndex      = errors.New("group index out of range")
	ErrType       = errors.New("invalid group type")
	ErrTypeName   = errors.New("unknown type name")
	ErrParticle   = errors.New("tag has no live particle")
	ErrDegenerate = errors.New("particle appears more than once in group")
	ErrMembers    = errors.New("particle tags of an existing group cannot change")
	ErrTag        = errors.New("no group with this tag")
	ErrSnapshot   = errors.New("invalid snapshot")
)

// Members holds the particle tags of a group followed by its link slots.
// Slots past NTags() + NLinks() are always zero.
type Members [MaxWidth]uint32

// Indexed is the read surface that force computations use. Both mesh
// containers satisfy it.
type Indexed interface {
	Name() string
	N() int
	NTypes() int
	TypeName(typ uint32) (string, error)
	TypeByName(name string) (uint32, error)
	MembersArray() []Members
	TypeValArray() []uint32
	GroupsOf(tag uint32) ([]int, error)
	Table() (*Table, error)
	Generation() uint64
}

var _ Indexed = (*Data)(nil)

// Data is an insertion-ordered array of bonded groups bound to a particle
// table. The particle table is not owned by Data and must outlive it.
type Data struct {
	name          string
	nTags, nLinks int
	pdata         *particle.Data

	members   []Members
	typeIDs   []uint32
	groupTags []uint32
	rtag      map[uint32]int
	nextTag   uint32
	typeNames []string

	gen uint64

	// Derived state.
	byTag    map[uint32][]int
	byTagGen uint64
	table    *Table
	width    int // row width of the last accelerated rebuild
	workers  int
	metrics  *Metrics
}

// NewData creates an empty container whose groups have nTags particle
// tags and nLinks link slots each, with nTypes group types.
func NewData(
	pdata *particle.Data, name string, nTags, nLinks, nTypes int,
) *Data {
	if pdata == nil {
		panic("group: nil particle table")
	} else if nTags < 1 || nLinks < 0 || nTags+nLinks > MaxWidth {
		panic(fmt.Sprintf(
			"group: %d tags and %d links do not fit in %d slots",
			nTags, nLinks, MaxWidth,
		))
	}

	d := &Data{
		name: name, nTags: nTags, nLinks: nLinks, pdata: pdata,
		rtag: make(map[uint32]int), workers: 1,
	}
	d.typeNames = make([]string, nTypes)
	for i := range d.typeNames { d.typeNames[i] = DefaultTypeName(i) }
	return d
}

// DefaultTypeName is the name given to type i before SetTypeName is called.
func DefaultTypeName(i int) string {
	if i < 26 { return string(rune('A' + i)) }
	return fmt.Sprintf("T%d", i)
}

func (d *Data) Name() string { return d.name }
func (d *Data) NTags() int { return d.nTags }
func (d *Data) NLinks() int { return d.nLinks }
func (d *Data) N() int { return len(d.members) }
func (d *Data) NTypes() int { return len(d.typeNames) }

// Particles returns the particle table the groups refer to.
func (d *Data) Particles() *particle.Data { return d.pdata }

// Generation changes every time the group array changes.
func (d *Data) Generation() uint64 { return d.gen }

func (d *Data) touch() {
	d.gen++
	d.metrics.setGroups(d.name, len(d.members))
}

// TypeName returns the name of the given type.
func (d *Data) TypeName(typ uint32) (string, error) {
	if int64(typ) >= int64(len(d.typeNames)) {
		return "", fmt.Errorf("%s type %d: %w", d.name, typ, ErrType)
	}
	return d.typeNames[typ], nil
}

// SetTypeName renames the given type.
func (d *Data) SetTypeName(typ uint32, name string) error {
	if int64(typ) >= int64(len(d.typeNames)) {
		return fmt.Errorf("%s type %d: %w", d.name, typ, ErrType)
	}
	d.typeNames[typ] = name
	return nil
}

// TypeByName returns the first type with the given name.
func (d *Data) TypeByName(name string) (uint32, error) {
	for i, n := range d.typeNames {
		if n == name { return uint32(i), nil }
	}
	return 0, fmt.Errorf("%s type '%s': %w", d.name, name, ErrTypeName)
}

// TypeMapping returns a copy of the type names, ordered by type id.
func (d *Data) TypeMapping() []string {
	return append([]string{}, d.typeNames...)
}

func (d *Data) checkIndex(i int) error {
	if i < 0 || i >= len(d.members) {
		return fmt.Errorf(
			"%s %d of %d: %w", d.name, i, len(d.members), ErrIndex,
		)
	}
	return nil
}

// check verifies the particle slots of m against the particle table.
func (d *Data) check(m *Members) error {
	for j := 0; j < d.nTags; j++ {
		if !d.pdata.IsActive(m[j]) {
			return fmt.Errorf(
				"%s member %d has tag %d: %w", d.name, j, m[j], ErrParticle,
			)
		}
		for k := 0; k < j; k++ {
			if m[j] == m[k] {
				return fmt.Errorf(
					"%s tag %d: %w", d.name, m[j], ErrDegenerate,
				)
			}
		}
	}
	return nil
}

func (d *Data) normalize(m *Members) {
	for j := d.nTags + d.nLinks; j < MaxWidth; j++ { m[j] = 0 }
}

// Add appends a group and returns its index. The index stays fixed until
// a group with a lower index is removed.
func (d *Data) Add(typ uint32, m Members) (int, error) {
	if int64(typ) >= int64(len(d.typeNames)) {
		return -1, fmt.Errorf("%s type %d: %w", d.name, typ, ErrType)
	}
	if err := d.check(&m); err != nil { return -1, err }
	d.normalize(&m)

	idx := len(d.members)
	d.members = append(d.members, m)
	d.typeIDs = append(d.typeIDs, typ)
	d.groupTags = append(d.groupTags, d.nextTag)
	d.rtag[d.nextTag] = idx
	d.nextTag++
	d.touch()

	return idx, nil
}

// Remove deletes the group with the given group tag. Groups after it move
// down one index.
func (d *Data) Remove(tag uint32) error {
	idx, ok := d.rtag[tag]
	if !ok {
		return fmt.Errorf("%s tag %d: %w", d.name, tag, ErrTag)
	}

	d.members = append(d.members[:idx], d.members[idx+1:]...)
	d.typeIDs = append(d.typeIDs[:idx], d.typeIDs[idx+1:]...)
	d.groupTags = append(d.groupTags[:idx], d.groupTags[idx+1:]...)
	delete(d.rtag, tag)
	for i := idx; i < len(d.groupTags); i++ { d.rtag[d.groupTags[i]] = i }
	d.touch()

	return nil
}

// Tag returns the group tag of the group at index i.
func (d *Data) Tag(i int) (uint32, error) {
	if err := d.checkIndex(i); err != nil { return 0, err }
	return d.groupTags[i], nil
}

// IndexByTag returns the current index of the group with the given tag.
func (d *Data) IndexByTag(tag uint32) (int, error) {
	idx, ok := d.rtag[tag]
	if !ok {
		return -1, fmt.Errorf("%s tag %d: %w", d.name, tag, ErrTag)
	}
	return idx, nil
}

// MembersByIndex returns the record of the group at index i.
func (d *Data) MembersByIndex(i int) (Members, error) {
	if err := d.checkIndex(i); err != nil { return Members{}, err }
	return d.members[i], nil
}

// TypeByIndex returns the type of the group at index i.
func (d *Data) TypeByIndex(i int) (uint32, error) {
	if err := d.checkIndex(i); err != nil { return 0, err }
	return d.typeIDs[i], nil
}

// SetMembersByIndex replaces the record of the group at index i. Only
// link slots may differ from the stored record.
func (d *Data) SetMembersByIndex(i int, m Members) error {
	if err := d.checkIndex(i); err != nil { return err }
	old := &d.members[i]
	for j := 0; j < d.nTags; j++ {
		if m[j] != old[j] {
			return fmt.Errorf(
				"%s %d slot %d: %d -> %d: %w",
				d.name, i, j, old[j], m[j], ErrMembers,
			)
		}
	}
	d.normalize(&m)
	if m == *old { return nil }

	*old = m
	d.touch()
	return nil
}

// MembersArray returns a copy of all group records, ordered by index.
func (d *Data) MembersArray() []Members {
	return append([]Members{}, d.members...)
}

// TypeValArray returns a copy of all group types, ordered by index.
func (d *Data) TypeValArray() []uint32 {
	return append([]uint32{}, d.typeIDs...)
}

// Validate checks that every group still refers to live particles.
func (d *Data) Validate() error {
	for i := range d.members {
		if err := d.check(&d.members[i]); err != nil {
			return fmt.Errorf("%s %d: %w", d.name, i, err)
		}
	}
	return nil
}

// Clear removes every group while keeping the type names.
func (d *Data) Clear() {
	d.members, d.typeIDs, d.groupTags = nil, nil, nil
	d.rtag = make(map[uint32]int)
	d.nextTag = 0
	d.touch()
}
