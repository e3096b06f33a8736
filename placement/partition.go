package placement

import (
	"cmp"
	"slices"
)

// RackGroup is a set of Racks dedicated to hosting one entire ReplicaSet.
// RackGroups of an assignment partition its Racks, which keeps the replicas
// of any one shard within disjoint failure domains.
type RackGroup struct {
	Racks []*Rack
}

// HostCount returns the total number of Hosts across Racks of the RackGroup.
func (g *RackGroup) HostCount() (n int) {
	for _, r := range g.Racks {
		n += len(r.Hosts)
	}
	return n
}

// HostsInGroupCreationOrder returns the Hosts of each Rack of the group, in
// Rack order and then Host order. This is the target order for both load
// distribution and shard binding.
func (g *RackGroup) HostsInGroupCreationOrder() []*Host {
	var out = make([]*Host, 0, g.HostCount())
	for _, r := range g.Racks {
		out = append(out, r.Hosts...)
	}
	return out
}

// PartitionRacks partitions |racks|, which must be ordered on descending
// Host count, into |replicas| RackGroups. Each Rack in turn is appended to
// the group having the fewest Hosts. Groups are re-ordered on ascending Host
// count (stably) before each selection, so that ties go to the group which
// currently sorts first. The returned order of groups is the order after
// the final selection, and the i'th group hosts replica i.
//
// Host counts of any two returned groups differ by at most the Host count
// of the largest Rack.
func PartitionRacks(replicas int, racks []*Rack) []*RackGroup {
	var groups = make([]*RackGroup, replicas)
	for i := range groups {
		groups[i] = new(RackGroup)
	}
	if replicas == 0 {
		return groups
	}

	for _, rack := range racks {
		slices.SortStableFunc(groups, func(a, b *RackGroup) int {
			return cmp.Compare(a.HostCount(), b.HostCount())
		})
		groups[0].Racks = append(groups[0].Racks, rack)
	}
	return groups
}
