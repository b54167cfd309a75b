// Package io reads and writes mesh files and the configuration files of
// the gomesh command.
package io

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/gomesh/group"
	"github.com/phil-mansfield/gomesh/mesh"
)

var triangleCols = []int{0, 1, 2, 3}

// toTag converts a column value to a tag or type id.
func toTag(x float64, row, col int) (uint32, error) {
	if x < 0 || x >= math.MaxUint32 || x != math.Floor(x) {
		return 0, fmt.Errorf(
			"Column %d of row %d is %g, which is not a valid id.",
			col, row, x,
		)
	}
	return uint32(x), nil
}

// ReadTriangles reads a triangle file with the columns type, a, b, c. If
// typeNames is empty, types are given default names up to the largest
// type id in the file.
func ReadTriangles(
	fname string, typeNames []string,
) (*mesh.TriangleSnapshot, error) {
	cols, err := table.ReadTable(fname, triangleCols, nil)
	if err != nil { return nil, err }

	n := len(cols[0])
	snap := &mesh.TriangleSnapshot{
		Groups:  make([][3]uint32, n),
		TypeIDs: make([]uint32, n),
	}

	maxType := -1
	for i := 0; i < n; i++ {
		typ, err := toTag(cols[0][i], i, 0)
		if err != nil { return nil, err }
		snap.TypeIDs[i] = typ
		if int(typ) > maxType { maxType = int(typ) }

		for k := 0; k < 3; k++ {
			tag, err := toTag(cols[k+1][i], i, k+1)
			if err != nil { return nil, err }
			snap.Groups[i][k] = tag
		}
	}

	if len(typeNames) == 0 {
		snap.TypeMapping = make([]string, maxType+1)
		for i := range snap.TypeMapping {
			snap.TypeMapping[i] = group.DefaultTypeName(i)
		}
	} else if maxType >= len(typeNames) {
		return nil, fmt.Errorf(
			"%s uses type %d, but only %d type names were given.",
			fname, maxType, len(typeNames),
		)
	} else {
		snap.TypeMapping = append([]string{}, typeNames...)
	}

	return snap, nil
}

// MaxTag returns the largest particle tag used by snap, or -1 if it has no
// triangles.
func MaxTag(snap *mesh.TriangleSnapshot) int64 {
	max := int64(-1)
	for _, g := range snap.Groups {
		for _, tag := range g {
			if int64(tag) > max { max = int64(tag) }
		}
	}
	return max
}

// WriteTriangles writes snap in the format read by ReadTriangles. Type
// names are written as comments.
func WriteTriangles(w io.Writer, snap *mesh.TriangleSnapshot) error {
	bw := bufio.NewWriter(w)
	for i, name := range snap.TypeMapping {
		fmt.Fprintf(bw, "# type %d: %s\n", i, name)
	}
	fmt.Fprintln(bw, "# type a b c")
	for i, g := range snap.Groups {
		fmt.Fprintf(bw, "%d %d %d %d\n", snap.TypeIDs[i], g[0], g[1], g[2])
	}
	return bw.Flush()
}

func linkString(link uint32) string {
	if link == group.Unlinked { return "-1" }
	return fmt.Sprintf("%d", link)
}

// WriteBonds writes every bond of bd on its own line: type, both tags and
// both triangle indices, with -1 for a missing triangle.
func WriteBonds(w io.Writer, bd *mesh.BondData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# type a b triangle0 triangle1")
	for i := 0; i < bd.N(); i++ {
		b, err := bd.Bond(i)
		if err != nil { return err }
		fmt.Fprintf(
			bw, "%d %d %d %s %s\n", b.Type, b.Tags[0], b.Tags[1],
			linkString(b.Triangles[0]), linkString(b.Triangles[1]),
		)
	}
	return bw.Flush()
}
