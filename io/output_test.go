package io

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gomesh/mesh"
	"github.com/phil-mansfield/gomesh/particle"
)

func TestWriteReadTable(t *testing.T) {
	snap := &mesh.TriangleSnapshot{
		Groups:      [][3]uint32{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}},
		TypeIDs:     []uint32{0, 0, 0, 0},
		TypeMapping: []string{"A"},
	}
	bd, td, err := mesh.New(particle.NewData(5), snap)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTable(TriangleTable, td.Data, buf))
	hd, back, err := ReadTable(buf)
	require.NoError(t, err)

	want, err := td.Table()
	require.NoError(t, err)
	assert.Equal(t, want, back)
	assert.Equal(t, int64(TriangleTable), hd.Type.TableType)
	assert.Equal(t, int64(5), hd.Layout.Particles)
	assert.Equal(t, int64(3), hd.Layout.Width)
	assert.Equal(t, int64(3), hd.Layout.NTags)
	assert.Equal(t, int64(3), hd.Layout.NLinks)
	assert.Equal(t, uint32(0), back.NGroups[4])

	buf.Reset()
	require.NoError(t, WriteTable(BondTable, bd.Data, buf))
	hd, back, err = ReadTable(buf)
	require.NoError(t, err)
	want, err = bd.Table()
	require.NoError(t, err)
	assert.Equal(t, want, back)
	assert.Equal(t, "bond", TableFlag(hd.Type.TableType).String())
}

func TestReadTableErrors(t *testing.T) {
	snap := &mesh.TriangleSnapshot{
		Groups:      [][3]uint32{{0, 1, 2}},
		TypeIDs:     []uint32{0},
		TypeMapping: []string{"A"},
	}
	_, td, err := mesh.New(particle.NewData(3), snap)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTable(TriangleTable, td.Data, buf))
	full := buf.Bytes()

	_, _, err = ReadTable(bytes.NewReader(full[:len(full)-1]))
	assert.Error(t, err)

	bad := append([]byte{}, full...)
	bad[0] = 7
	_, _, err = ReadTable(bytes.NewReader(bad))
	assert.Error(t, err)
}

func TestReadTableOversizedHeader(t *testing.T) {
	for _, layout := range []LayoutInfo{
		{Particles: 1 << 40, Width: 1 << 20},
		{Particles: -1, Width: 3},
		{Particles: 1 << 30, Width: 1 << 10},
	} {
		hd := TableHeader{}
		hd.Type.Endianness = endianFlag()
		hd.Type.HeaderSize = int64(binary.Size(&hd))
		hd.Layout = layout

		buf := &bytes.Buffer{}
		require.NoError(t, binary.Write(buf, end, &hd))
		buf.Write(make([]byte, 64))

		_, _, err := ReadTable(buf)
		assert.Error(t, err, "%d x %d", layout.Particles, layout.Width)
	}
}
