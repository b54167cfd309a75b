package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleMeshFile(t *testing.T) {
	con, err := ParseMeshConfig(ExampleMeshFile)
	require.NoError(t, err)
	assert.Equal(t, "path/to/triangles.txt", con.Input)
	assert.True(t, con.ValidInput())
	assert.False(t, con.ValidParticles())
	assert.False(t, con.ValidDatabase())
	assert.Equal(t, "mesh", con.SnapshotName)
	assert.Equal(t, 1, con.Workers)
	assert.Empty(t, con.TypeName)
}

func TestParseMeshConfig(t *testing.T) {
	con, err := ParseMeshConfig(`[Mesh]
Input = tris.txt
TypeName = outer
TypeName = inner
Particles = 12
Database = meshes.db
SnapshotName = vesicle
BondOutput = bonds.txt
TriangleTableOutput = triangles.table
MetricsFile = gomesh.prom
Workers = 4
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, con.TypeName)
	assert.Equal(t, 12, con.Particles)
	assert.Equal(t, "vesicle", con.SnapshotName)
	assert.Equal(t, 4, con.Workers)
	assert.True(t, con.ValidDatabase())
	assert.True(t, con.ValidBondOutput())
	assert.False(t, con.ValidBondTableOutput())
	assert.True(t, con.ValidTriangleTableOutput())
	assert.True(t, con.ValidMetricsFile())
	assert.False(t, con.ValidLogFile())
}

func TestMeshConfigCheckInit(t *testing.T) {
	for _, body := range []string{
		"[Mesh]\nParticles = -1\n",
		"[Mesh]\nWorkers = -2\n",
		"[Mesh]\nTypeName = a\nTypeName = a\n",
		"[Mesh]\nUnknownField = 3\n",
	} {
		_, err := ParseMeshConfig(body)
		assert.Error(t, err, body)
	}
}
