package placement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRacksAreOrderedOnDescendingHostCount(t *testing.T) {
	var hosts = buildHosts(rc{"c", 1}, rc{"a", 3}, rc{"b", 1}, rc{"d", 3})
	var byName, names = AggregateRacks(hosts)

	require.Equal(t, []string{"c", "a", "b", "d"}, names)
	require.Len(t, byName["a"].Hosts, 3)
	require.Equal(t, "0.00%", byName["a"].Owns)

	// Ties retain first-seen order.
	require.Equal(t, []string{"a", "d", "c", "b"},
		rackNamesOf(RacksByHostCountDescending(byName, names)))
}

func TestPartitionReordersGroupsOnEachSelection(t *testing.T) {
	var racks = []*Rack{
		rackOf("r20", 20), rackOf("r8", 8), rackOf("r5", 5), rackOf("r3", 3), rackOf("r2", 2),
	}
	var groups = PartitionRacks(3, racks)

	require.Equal(t, [][]string{
		{"r5", "r3", "r2"},
		{"r8"},
		{"r20"},
	}, groupRackNames(groups))
	require.Equal(t, []int{10, 8, 20}, []int{groups[0].HostCount(), groups[1].HostCount(), groups[2].HostCount()})
}

func TestPartitionBalancesWithinLargestRack(t *testing.T) {
	for _, replicas := range []int{1, 2, 3, 4} {
		var racks []*Rack
		for i, n := range []int{9, 7, 7, 4, 3, 3, 2, 1, 1, 1} {
			racks = append(racks, rackOf(fmt.Sprintf("r%d", i), n))
		}
		var groups = PartitionRacks(replicas, racks)
		require.Len(t, groups, replicas)

		var lo, hi, seen = -1, 0, 0
		for _, g := range groups {
			require.NotEmpty(t, g.Racks)
			seen += len(g.Racks)

			if n := g.HostCount(); lo == -1 || n < lo {
				lo = n
			}
			if n := g.HostCount(); n > hi {
				hi = n
			}
		}
		require.Equal(t, len(racks), seen)
		require.LessOrEqual(t, hi-lo, 9)
	}
}

func TestHostsInGroupCreationOrder(t *testing.T) {
	var g = &RackGroup{Racks: []*Rack{rackOf("b", 2), rackOf("a", 1)}}

	var names []string
	for _, h := range g.HostsInGroupCreationOrder() {
		names = append(names, h.Name)
	}
	require.Equal(t, []string{"b-0", "b-1", "a-0"}, names)
}

func TestDistributeLoadIsPure(t *testing.T) {
	var g = &RackGroup{Racks: []*Rack{rackOf("a", 3)}}
	var tallies = DistributeLoad([]*RackGroup{g}, 7)

	require.Equal(t, []int{3, 2, 2}, tallies[0].Counts)
	require.Equal(t, 7, tallies[0].Total())
	for _, h := range g.Racks[0].Hosts {
		require.Equal(t, 0, h.Load)
	}

	ApplyLoad(tallies, map[string]*Rack{"a": g.Racks[0]}, 7)
	require.Equal(t, 3, g.Racks[0].Hosts[0].Load)
	require.Equal(t, "42.86%", g.Racks[0].Hosts[0].Owns)
	require.Equal(t, 7, g.Racks[0].Load)
	require.Equal(t, "100.00%", g.Racks[0].Owns)
}

func TestShardQueue(t *testing.T) {
	var rs = NewReplicaSets(1, 5)[0]

	var q = NewShardQueue(rs, 0)
	require.Equal(t, 5, q.Len())

	var out, ok = q.Dequeue(2)
	require.True(t, ok)
	require.Equal(t, []int{0, 1}, shardIndices(out))

	_, ok = q.Dequeue(4)
	require.False(t, ok)
	require.Equal(t, 3, q.Len()) // Unchanged.

	_, ok = q.Dequeue(-1)
	require.False(t, ok)

	out, ok = q.Dequeue(3)
	require.True(t, ok)
	require.Equal(t, []int{2, 3, 4}, shardIndices(out))
	require.True(t, q.Drained())

	// Dequeued shards are those of the ReplicaSet.
	require.True(t, out[0] == rs.Shards[2])

	// Offsets rotate the queue, and wrap.
	q = NewShardQueue(rs, 7)
	out, _ = q.Dequeue(5)
	require.Equal(t, []int{2, 3, 4, 0, 1}, shardIndices(out))

	require.True(t, NewShardQueue(NewReplicaSets(1, 0)[0], 3).Drained())
}

func TestAssignShardsErrors(t *testing.T) {
	var h = NewHost("h", "a")
	var rs = NewReplicaSets(1, 3)

	// Tallies may not exceed queued shards.
	var err = AssignShards(
		[]LoadTally{{Replica: 0, Hosts: []*Host{h}, Counts: []int{4}}},
		[]*ShardQueue{NewShardQueue(rs[0], 0)})
	require.EqualError(t, err, "replica 0: queue underflow binding 4 shards to host h (3 remain)")

	// Nor may they leave shards unassigned.
	err = AssignShards(
		[]LoadTally{{Replica: 0, Hosts: []*Host{h}, Counts: []int{2}}},
		[]*ShardQueue{NewShardQueue(rs[0], 0)})
	require.EqualError(t, err, "replica 0: 1 shards remain unassigned")
}

func TestRotationOffsets(t *testing.T) {
	var cfg = Config{Shards: 10, Replicas: 3, RotateReplicas: true}
	require.Equal(t, []int{0, 3, 6}, []int{cfg.rotation(0), cfg.rotation(1), cfg.rotation(2)})

	cfg.RotateReplicas = false
	require.Equal(t, 0, cfg.rotation(2))

	cfg = Config{Shards: 0, Replicas: 3, RotateReplicas: true}
	require.Equal(t, 0, cfg.rotation(2))
}

func TestFormatOwnership(t *testing.T) {
	for _, tc := range []struct {
		load, total int
		expect      string
	}{
		{0, 0, "0.00%"},
		{0, 10, "0.00%"},
		{1, 1, "100.00%"},
		{1, 3, "33.33%"},
		{2, 3, "66.67%"},
		{1, 4, "25.00%"},
		{1, 800, "0.13%"}, // Exact half rounds up.
		{1, 30000, "0.00%"},
		{13, 384, "3.39%"},
		{6, 384, "1.56%"},
	} {
		require.Equal(t, tc.expect, FormatOwnership(tc.load, tc.total), "%d / %d", tc.load, tc.total)
	}
}

func rackOf(name string, hosts int) *Rack {
	var r = &Rack{Name: name, Owns: FormatOwnership(0, 0)}
	for i := 0; i != hosts; i++ {
		r.Hosts = append(r.Hosts, NewHost(fmt.Sprintf("%s-%d", name, i), name))
	}
	return r
}

func groupRackNames(groups []*RackGroup) (out [][]string) {
	for _, g := range groups {
		out = append(out, rackNamesOf(g.Racks))
	}
	return
}
