// Package particle implements the minimal particle-data table that bonded
// group containers are bound to: the set of live particle tags and their
// current local indices.
package particle

import (
	"fmt"
)

const (
	// NotLocal is the reverse-tag value of a tag with no live particle.
	NotLocal = ^uint32(0)
)

// Data maps stable particle tags to transient local indices. Tags are
// never reused after removal.
type Data struct {
	tags []uint32 // index -> tag
	rtag []uint32 // tag -> index, NotLocal if removed
	gen  uint64
}

// NewData creates a table with n particles. Particle i has tag i.
func NewData(n int) *Data {
	pd := &Data{ make([]uint32, n), make([]uint32, n), 0 }
	for i := 0; i < n; i++ {
		pd.tags[i] = uint32(i)
		pd.rtag[i] = uint32(i)
	}
	return pd
}

// NewDataFromTags creates a table that has issued nGlobal tags, of which
// only those in live are still alive. Particle i has tag live[i].
func NewDataFromTags(nGlobal int, live []uint32) (*Data, error) {
	if nGlobal < 0 {
		return nil, fmt.Errorf("particle: negative tag count %d", nGlobal)
	}

	pd := &Data{ make([]uint32, len(live)), make([]uint32, nGlobal), 0 }
	for i := range pd.rtag { pd.rtag[i] = NotLocal }
	for i, tag := range live {
		if int64(tag) >= int64(nGlobal) {
			return nil, fmt.Errorf(
				"particle: tag %d was never issued, only %d tags exist",
				tag, nGlobal,
			)
		} else if pd.rtag[tag] != NotLocal {
			return nil, fmt.Errorf("particle: tag %d is listed twice", tag)
		}
		pd.tags[i] = tag
		pd.rtag[tag] = uint32(i)
	}
	return pd, nil
}

// Tags returns a copy of the live tags in local index order.
func (pd *Data) Tags() []uint32 { return append([]uint32{}, pd.tags...) }

// N returns the number of live particles.
func (pd *Data) N() int { return len(pd.tags) }

// NGlobal returns the number of tags ever issued, live or not.
func (pd *Data) NGlobal() int { return len(pd.rtag) }

// MaxTag returns the largest tag ever issued. It panics on an empty table.
func (pd *Data) MaxTag() uint32 {
	if len(pd.rtag) == 0 { panic("particle: MaxTag of empty table") }
	return uint32(len(pd.rtag) - 1)
}

// Generation changes whenever tags are added, removed or reordered.
func (pd *Data) Generation() uint64 { return pd.gen }

// Tag returns the tag of the particle at local index idx.
func (pd *Data) Tag(idx int) uint32 { return pd.tags[idx] }

// Index returns the local index of tag, or false if no live particle has
// that tag.
func (pd *Data) Index(tag uint32) (int, bool) {
	if int64(tag) >= int64(len(pd.rtag)) { return -1, false }
	idx := pd.rtag[tag]
	if idx == NotLocal { return -1, false }
	return int(idx), true
}

// IsActive returns true if tag belongs to a live particle.
func (pd *Data) IsActive(tag uint32) bool {
	_, ok := pd.Index(tag)
	return ok
}

// Add appends a new particle and returns its tag.
func (pd *Data) Add() uint32 {
	tag := uint32(len(pd.rtag))
	pd.rtag = append(pd.rtag, uint32(len(pd.tags)))
	pd.tags = append(pd.tags, tag)
	pd.gen++
	return tag
}

// Remove deletes the particle with the given tag. The last particle is
// moved into the freed index.
func (pd *Data) Remove(tag uint32) error {
	idx, ok := pd.Index(tag)
	if !ok {
		return fmt.Errorf("particle: cannot remove tag %d, no such particle", tag)
	}

	last := len(pd.tags) - 1
	if idx != last {
		moved := pd.tags[last]
		pd.tags[idx] = moved
		pd.rtag[moved] = uint32(idx)
	}
	pd.tags = pd.tags[:last]
	pd.rtag[tag] = NotLocal
	pd.gen++
	return nil
}

// Reorder permutes local storage so that the particle previously at index
// perm[i] ends up at index i. This is what a spatial sort does between
// steps.
func (pd *Data) Reorder(perm []int) error {
	if len(perm) != len(pd.tags) {
		return fmt.Errorf(
			"particle: permutation has length %d, but there are %d particles",
			len(perm), len(pd.tags),
		)
	}

	seen := make([]bool, len(perm))
	tags := make([]uint32, len(perm))
	for i, j := range perm {
		if j < 0 || j >= len(perm) || seen[j] {
			return fmt.Errorf("particle: %v is not a permutation", perm)
		}
		seen[j] = true
		tags[i] = pd.tags[j]
	}

	pd.tags = tags
	for i, tag := range pd.tags { pd.rtag[tag] = uint32(i) }
	pd.gen++
	return nil
}
