package io

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/phil-mansfield/gomesh/group"
)

var end = binary.LittleEndian

// TableHeader starts every binary table file. It is followed by the
// NGroups array, the Entries array and the Pos array of the table.
type TableHeader struct {
	Type   TypeInfo
	Layout LayoutInfo
}

type TypeInfo struct {
	Endianness int64
	HeaderSize int64
	TableType  int64
}

type LayoutInfo struct {
	Particles, Width   int64
	NTags, NLinks      int64
	Generation         int64
	ParticleGeneration int64
}

type TableFlag int64

const (
	BondTable TableFlag = iota
	TriangleTable
)

func (flag TableFlag) String() string {
	switch flag {
	case BondTable:
		return "bond"
	case TriangleTable:
		return "triangle"
	}
	return fmt.Sprintf("TableFlag(%d)", int64(flag))
}

func endianFlag() int64 {
	if end == binary.LittleEndian { return -1 }
	return 0
}

// WriteTable writes the per-particle table of d to wr in a little-endian
// binary format, rebuilding the table first if needed.
func WriteTable(flag TableFlag, d *group.Data, wr io.Writer) error {
	t, err := d.Table()
	if err != nil { return err }

	hd := TableHeader{}
	hd.Type.Endianness = endianFlag()
	hd.Type.HeaderSize = int64(binary.Size(&hd))
	hd.Type.TableType = int64(flag)

	hd.Layout.Particles = int64(t.Indexer.W)
	hd.Layout.Width = int64(t.Indexer.H)
	hd.Layout.NTags, hd.Layout.NLinks = int64(d.NTags()), int64(d.NLinks())
	hd.Layout.Generation = int64(t.Generation)
	hd.Layout.ParticleGeneration = int64(t.ParticleGeneration)

	for _, x := range []interface{}{&hd, t.NGroups, t.Entries, t.Pos} {
		if err := binary.Write(wr, end, x); err != nil { return err }
	}
	return nil
}

// maxTableElements bounds Particles * Width so that the element count
// always fits in an int.
const maxTableElements = 1 << 40

func validLayout(particles, width int64) bool {
	if particles < 0 || width < 0 || particles > maxTableElements {
		return false
	}
	return width == 0 || particles <= maxTableElements/width
}

// readChunk is the most elements readSlice allocates ahead of the data.
const readChunk = 1 << 14

// readSlice reads n elements from rd. Memory grows with the data actually
// read, so a header that overstates n fails on a short read instead of
// allocating the full array up front.
func readSlice[T any](rd io.Reader, n int) ([]T, error) {
	first := n
	if first > readChunk { first = readChunk }
	out := make([]T, 0, first)
	for len(out) < n {
		k := n - len(out)
		if k > readChunk { k = readChunk }
		buf := make([]T, k)
		if err := binary.Read(rd, end, buf); err != nil { return nil, err }
		out = append(out, buf...)
	}
	return out, nil
}

// ReadTable reads a table written by WriteTable.
func ReadTable(rd io.Reader) (*TableHeader, *group.Table, error) {
	hd := &TableHeader{}
	if err := binary.Read(rd, end, hd); err != nil {
		return nil, nil, err
	}

	if hd.Type.Endianness != endianFlag() {
		return nil, nil, fmt.Errorf(
			"Table file has endianness flag %d, expected %d.",
			hd.Type.Endianness, endianFlag(),
		)
	} else if hd.Type.HeaderSize != int64(binary.Size(hd)) {
		return nil, nil, fmt.Errorf(
			"Table file has a %d byte header, expected %d bytes.",
			hd.Type.HeaderSize, binary.Size(hd),
		)
	} else if !validLayout(hd.Layout.Particles, hd.Layout.Width) {
		return nil, nil, fmt.Errorf(
			"Table file has a %d x %d layout.",
			hd.Layout.Particles, hd.Layout.Width,
		)
	}

	t := &group.Table{}
	t.Indexer = group.Indexer{
		W: int(hd.Layout.Particles), H: int(hd.Layout.Width),
	}
	t.Generation = uint64(hd.Layout.Generation)
	t.ParticleGeneration = uint64(hd.Layout.ParticleGeneration)

	var err error
	if t.NGroups, err = readSlice[uint32](rd, t.Indexer.W); err != nil {
		return nil, nil, err
	}
	if t.Entries, err = readSlice[group.Entry](rd, t.Indexer.Size()); err != nil {
		return nil, nil, err
	}
	if t.Pos, err = readSlice[uint32](rd, t.Indexer.Size()); err != nil {
		return nil, nil, err
	}

	for i, n := range t.NGroups {
		if int(n) > t.Indexer.H {
			return nil, nil, fmt.Errorf(
				"Particle %d is in %d groups, but rows hold %d.",
				i, n, t.Indexer.H,
			)
		}
	}

	return hd, t, nil
}
