package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gomesh/mesh"
	"github.com/phil-mansfield/gomesh/particle"
)

func writeFile(t *testing.T, name, body string) string {
	fname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fname, []byte(body), 0644))
	return fname
}

func TestReadTriangles(t *testing.T) {
	fname := writeFile(t, "tris.txt", `# type a b c
0 0 1 2
1 1 2 3
`)

	snap, err := ReadTriangles(fname, nil)
	require.NoError(t, err)
	assert.Equal(t, [][3]uint32{{0, 1, 2}, {1, 2, 3}}, snap.Groups)
	assert.Equal(t, []uint32{0, 1}, snap.TypeIDs)
	assert.Equal(t, []string{"A", "B"}, snap.TypeMapping)
	assert.Equal(t, int64(3), MaxTag(snap))

	snap, err = ReadTriangles(fname, []string{"outer", "inner", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "extra"}, snap.TypeMapping)

	_, err = ReadTriangles(fname, []string{"outer"})
	assert.Error(t, err)
}

func TestReadTrianglesBadIds(t *testing.T) {
	for _, body := range []string{
		"0 0 1 -2\n",
		"0 0 1.5 2\n",
		"-1 0 1 2\n",
	} {
		fname := writeFile(t, "bad.txt", body)
		_, err := ReadTriangles(fname, nil)
		assert.Error(t, err, body)
	}

	_, err := ReadTriangles(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestWriteTrianglesRoundTrip(t *testing.T) {
	snap := &mesh.TriangleSnapshot{
		Groups:      [][3]uint32{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}},
		TypeIDs:     []uint32{0, 0, 1, 1},
		TypeMapping: []string{"a", "b"},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteTriangles(buf, snap))
	assert.True(t, strings.HasPrefix(buf.String(), "# type 0: a\n# type 1: b\n"))

	fname := writeFile(t, "tris.txt", buf.String())
	back, err := ReadTriangles(fname, snap.TypeMapping)
	require.NoError(t, err)
	assert.Equal(t, snap, back)
}

func TestWriteBonds(t *testing.T) {
	snap := &mesh.TriangleSnapshot{
		Groups:      [][3]uint32{{0, 1, 2}, {1, 2, 3}},
		TypeIDs:     []uint32{0, 0},
		TypeMapping: []string{"A"},
	}
	bd, _, err := mesh.New(particle.NewData(4), snap)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteBonds(buf, bd))
	assert.Equal(t, `# type a b triangle0 triangle1
0 0 1 0 -1
0 0 2 0 -1
0 1 2 0 1
0 1 3 1 -1
0 2 3 1 -1
`, buf.String())
}

func TestMaxTagEmpty(t *testing.T) {
	assert.Equal(t, int64(-1), MaxTag(&mesh.TriangleSnapshot{}))
}
