package group

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gomesh/particle"
)

// chain creates n particles joined by n-1 pair groups, (i, i+1).
func chain(n int) (*particle.Data, *Data) {
	pd := particle.NewData(n)
	d := NewData(pd, "pair", 2, 1, 2)
	for i := 0; i < n-1; i++ {
		_, err := d.Add(uint32(i%2), Members{uint32(i), uint32(i + 1), uint32(i)})
		if err != nil { panic(err) }
	}
	return pd, d
}

// random creates n particles with m random triples.
func random(n, m int, seed int64) (*particle.Data, *Data) {
	gen := rand.New(rand.NewSource(seed))
	pd := particle.NewData(n)
	d := NewData(pd, "triple", 3, 3, 1)
	for d.N() < m {
		perm := gen.Perm(n)
		a, b, c := uint32(perm[0]), uint32(perm[1]), uint32(perm[2])
		_, err := d.Add(0, Members{a, b, c, 1, 2, 3})
		if err != nil { panic(err) }
	}
	return pd, d
}

func TestTableChain(t *testing.T) {
	_, d := chain(4)
	tab, err := d.Table()
	require.NoError(t, err)

	assert.Equal(t, Indexer{4, 2}, tab.Indexer)
	assert.Equal(t, []uint32{1, 2, 2, 1}, tab.NGroups)

	es, pos := tab.Row(1)
	require.Len(t, es, 2)
	assert.Equal(t, []uint32{1, 0}, pos)
	assert.Equal(t, Members{0, 1, 0}, es[0].Members)
	assert.Equal(t, uint32(0), es[0].Type)
	assert.Equal(t, Members{1, 2, 1}, es[1].Members)
	assert.Equal(t, uint32(1), es[1].Type)

	es, pos = tab.Row(3)
	require.Len(t, es, 1)
	assert.Equal(t, []uint32{1}, pos)
	assert.Equal(t, Members{2, 3, 2}, es[0].Members)
}

func TestTableCache(t *testing.T) {
	pd, d := chain(5)
	assert.True(t, d.Dirty())
	tab1, err := d.Table()
	require.NoError(t, err)
	assert.False(t, d.Dirty())

	tab2, err := d.Table()
	require.NoError(t, err)
	assert.Same(t, tab1, tab2)
	assert.Equal(t, d.Generation(), tab1.Generation)

	// Changing a link slot invalidates the table.
	require.NoError(t, d.SetMembersByIndex(0, Members{0, 1, 9}))
	assert.True(t, d.Dirty())
	tab3, err := d.Table()
	require.NoError(t, err)
	assert.NotSame(t, tab1, tab3)
	assert.Equal(t, uint32(0), tab1.Entries[0].Members[2], "published table changed")
	assert.Equal(t, uint32(9), tab3.Entries[0].Members[2])

	// So does reordering the particles.
	require.NoError(t, pd.Reorder([]int{4, 3, 2, 1, 0}))
	assert.True(t, d.Dirty())
	tab4, err := d.Table()
	require.NoError(t, err)
	assert.Equal(t, pd.Generation(), tab4.ParticleGeneration)
	es, pos := tab4.Row(4) // tag 0
	require.Len(t, es, 1)
	assert.Equal(t, Members{4, 3, 9}, es[0].Members)
	assert.Equal(t, []uint32{0}, pos)
}

func TestTableMissingParticle(t *testing.T) {
	for _, workers := range []int{1, 3} {
		pd, d := chain(6)
		d.SetWorkers(workers)
		require.NoError(t, pd.Remove(3))

		_, err := d.Table()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrParticle))
		assert.Contains(t, err.Error(), "pair 2 is incomplete")
		assert.True(t, d.Dirty())
	}
}

func TestTableAcceleratedMatchesHost(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		_, d := random(50, 200, seed)
		host, err := d.rebuildTableHost()
		require.NoError(t, err)

		for _, workers := range []int{2, 3, 8, 64} {
			d.workers = workers
			d.width = 0
			accel, err := d.rebuildTableAccelerated()
			require.NoError(t, err)
			assert.Equal(t, host, accel, "seed %d, %d workers", seed, workers)

			// A warm start with a larger width gives the same table.
			d.width = host.Indexer.H + 5
			accel, err = d.rebuildTableAccelerated()
			require.NoError(t, err)
			assert.Equal(t, host, accel, "seed %d, %d workers", seed, workers)
		}
	}
}

func TestTableOverflowRetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_, d := random(20, 100, 7)
	d.SetMetrics(m)
	d.SetWorkers(4)

	tab, err := d.Table()
	require.NoError(t, err)
	assert.True(t, tab.Indexer.H > 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries.WithLabelValues("triple")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rebuilds.WithLabelValues("triple", accelPath)))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.Groups.WithLabelValues("triple")))

	// The width is remembered, so the next rebuild does not overflow.
	require.NoError(t, d.Remove(0))
	_, err = d.Table()
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries.WithLabelValues("triple")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rebuilds.WithLabelValues("triple", accelPath)))
}

func TestGroupsOf(t *testing.T) {
	_, d := chain(4)
	gs, err := d.GroupsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, gs)

	gs, err = d.GroupsOf(3)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, gs)

	require.NoError(t, d.Remove(0))
	gs, err = d.GroupsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, gs)

	gs, err = d.GroupsOf(0)
	require.NoError(t, err)
	assert.Empty(t, gs)

	_, err = d.GroupsOf(10)
	assert.True(t, errors.Is(err, ErrParticle))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.rebuilt("x", hostPath)
		m.retried("x")
		m.setGroups("x", 1)
	})
}
