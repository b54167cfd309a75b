package group

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// Indexer maps (particle index, row position) pairs into a Table's flat
// arrays. Rows are interleaved: consecutive particles are adjacent.
type Indexer struct {
	W, H int // W is the particle count, H the row width
}

func (ix Indexer) Index(i, j int) int { return j*ix.W + i }
func (ix Indexer) Size() int { return ix.W * ix.H }

// Entry is one row element of a Table. The particle slots of Members hold
// current particle indices rather than tags; link slots are copied as-is.
type Entry struct {
	Members Members
	Type    uint32
}

// Table lists, for every local particle, the groups it belongs to and its
// position within each of them. A Table is never modified after Data
// publishes it.
type Table struct {
	Indexer Indexer
	NGroups []uint32 // groups per particle
	Entries []Entry
	Pos     []uint32 // position of the particle within the entry's group

	Generation         uint64 // group generation the table was built from
	ParticleGeneration uint64 // particle generation the table was built from
}

// Row returns copies of the entries and positions of particle idx.
func (t *Table) Row(idx int) ([]Entry, []uint32) {
	n := int(t.NGroups[idx])
	es, pos := make([]Entry, n), make([]uint32, n)
	for j := 0; j < n; j++ {
		k := t.Indexer.Index(idx, j)
		es[j], pos[j] = t.Entries[k], t.Pos[k]
	}
	return es, pos
}

// SetWorkers sets the number of workers used to rebuild the table. One
// worker selects the serial host path, n < 1 uses every CPU.
func (d *Data) SetWorkers(n int) {
	if n < 1 { n = runtime.NumCPU() }
	d.workers = n
}

// Dirty returns true if the next call to Table will rebuild.
func (d *Data) Dirty() bool {
	return d.table == nil || d.table.Generation != d.gen ||
		d.table.ParticleGeneration != d.pdata.Generation()
}

// Table returns the per-particle table for the current group array and
// particle order, rebuilding it first if either has changed.
func (d *Data) Table() (*Table, error) {
	if !d.Dirty() { return d.table, nil }

	var t *Table
	var err error
	if d.workers > 1 {
		t, err = d.rebuildTableAccelerated()
	} else {
		t, err = d.rebuildTableHost()
	}
	if err != nil {
		d.table = nil
		return nil, err
	}

	t.Generation, t.ParticleGeneration = d.gen, d.pdata.Generation()
	d.table = t
	return t, nil
}

// GroupsOf returns the indices of all groups containing the particle with
// the given tag, in ascending order.
func (d *Data) GroupsOf(tag uint32) ([]int, error) {
	if !d.pdata.IsActive(tag) {
		return nil, fmt.Errorf("%s lookup of tag %d: %w", d.name, tag, ErrParticle)
	}

	if d.byTag == nil || d.byTagGen != d.gen {
		d.byTag = make(map[uint32][]int)
		for gi := range d.members {
			for j := 0; j < d.nTags; j++ {
				tag := d.members[gi][j]
				d.byTag[tag] = append(d.byTag[tag], gi)
			}
		}
		d.byTagGen = d.gen
	}

	return append([]int{}, d.byTag[tag]...), nil
}

func (d *Data) missingError(gi int) error {
	m := &d.members[gi]
	for j := 0; j < d.nTags; j++ {
		if !d.pdata.IsActive(m[j]) {
			return fmt.Errorf(
				"%s %d is incomplete, member %d has tag %d: %w",
				d.name, gi, j, m[j], ErrParticle,
			)
		}
	}
	panic("Impossible")
}

// resolve converts group gi into a table entry. It returns false if a
// member has no live particle.
func (d *Data) resolve(gi int, e *Entry) bool {
	e.Members = d.members[gi]
	e.Type = d.typeIDs[gi]
	for j := 0; j < d.nTags; j++ {
		idx, ok := d.pdata.Index(e.Members[j])
		if !ok { return false }
		e.Members[j] = uint32(idx)
	}
	return true
}

func (d *Data) newTable(width int) *Table {
	ix := Indexer{ d.pdata.N(), width }
	return &Table{
		Indexer: ix,
		NGroups: make([]uint32, ix.W),
		Entries: make([]Entry, ix.Size()),
		Pos:     make([]uint32, ix.Size()),
	}
}

// rebuildTableHost is the serial rebuild: one pass to size the rows, one
// to fill them.
func (d *Data) rebuildTableHost() (*Table, error) {
	entries := make([]Entry, len(d.members))
	counts := make([]uint32, d.pdata.N())
	width := 0
	for gi := range d.members {
		if !d.resolve(gi, &entries[gi]) { return nil, d.missingError(gi) }
		for j := 0; j < d.nTags; j++ {
			idx := entries[gi].Members[j]
			counts[idx]++
			if int(counts[idx]) > width { width = int(counts[idx]) }
		}
	}

	t := d.newTable(width)
	for gi := range entries {
		for j := 0; j < d.nTags; j++ {
			idx := int(entries[gi].Members[j])
			k := t.Indexer.Index(idx, int(t.NGroups[idx]))
			t.Entries[k], t.Pos[k] = entries[gi], uint32(j)
			t.NGroups[idx]++
		}
	}

	d.metrics.rebuilt(d.name, hostPath)
	return t, nil
}

// flags is written by workers during an accelerated rebuild and checked
// once they have all finished.
type flags struct {
	missing uint32 // lowest incomplete group index + 1, or 0
	needed  uint32 // longest row seen
}

func atomicMin(addr *uint32, val uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if old != 0 && old <= val { return }
		if atomic.CompareAndSwapUint32(addr, old, val) { return }
	}
}

func atomicMax(addr *uint32, val uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if old >= val { return }
		if atomic.CompareAndSwapUint32(addr, old, val) { return }
	}
}

// span returns the part of [0, n) that worker id is responsible for.
func span(n, workers, id int) (low, high int) {
	return n * id / workers, n * (id + 1) / workers
}

// rebuildTableAccelerated fills the table with a pool of workers. Each
// worker owns a contiguous range of particle indices and scans the groups
// in order, so the output is identical to rebuildTableHost's. Rows are
// allocated with the width of the previous table; if a row does not fit,
// the rebuild is repeated with the width reported in the flags.
func (d *Data) rebuildTableAccelerated() (*Table, error) {
	workers := d.workers
	entries := make([]Entry, len(d.members))
	fl := &flags{}

	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go d.chanResolve(id, workers, entries, fl, out)
	}
	d.chanResolve(workers-1, workers, entries, fl, out)
	for i := 0; i < workers; i++ { <-out }

	if fl.missing != 0 { return nil, d.missingError(int(fl.missing - 1)) }

	width := d.width
	if width < 1 { width = 1 }
	for {
		t := d.newTable(width)
		fl.needed = 0
		for id := 0; id < workers-1; id++ {
			go d.chanFill(id, workers, entries, t, fl, out)
		}
		d.chanFill(workers-1, workers, entries, t, fl, out)
		for i := 0; i < workers; i++ { <-out }

		needed := int(fl.needed)
		if needed > width {
			d.metrics.retried(d.name)
			width = needed
			continue
		}

		// Rows are interleaved, so dropping unused trailing rows leaves
		// the same layout the host path produces.
		t.Indexer.H = needed
		t.Entries = t.Entries[:t.Indexer.Size()]
		t.Pos = t.Pos[:t.Indexer.Size()]
		d.width = width
		d.metrics.rebuilt(d.name, accelPath)
		return t, nil
	}
}

func (d *Data) chanResolve(
	id, workers int, entries []Entry, fl *flags, out chan<- int,
) {
	low, high := span(len(entries), workers, id)
	for gi := low; gi < high; gi++ {
		if !d.resolve(gi, &entries[gi]) {
			atomicMin(&fl.missing, uint32(gi+1))
			break
		}
	}
	out <- id
}

func (d *Data) chanFill(
	id, workers int, entries []Entry, t *Table, fl *flags, out chan<- int,
) {
	low, high := span(t.Indexer.W, workers, id)
	longest := uint32(0)
	for gi := range entries {
		for j := 0; j < d.nTags; j++ {
			idx := int(entries[gi].Members[j])
			if idx < low || idx >= high { continue }

			n := int(t.NGroups[idx])
			if n < t.Indexer.H {
				k := t.Indexer.Index(idx, n)
				t.Entries[k], t.Pos[k] = entries[gi], uint32(j)
			}
			t.NGroups[idx]++
			if t.NGroups[idx] > longest { longest = t.NGroups[idx] }
		}
	}
	atomicMax(&fl.needed, longest)
	out <- id
}
