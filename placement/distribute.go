package placement

// LoadTally is the number of shards of one replica which each Host of the
// replica's RackGroup will own. Hosts and Counts share cardinality, and Hosts
// are in RackGroup.HostsInGroupCreationOrder.
type LoadTally struct {
	Replica int
	Hosts   []*Host
	Counts  []int
}

// Total returns the sum of Counts, which is the number of shards tallied.
func (t LoadTally) Total() (n int) {
	for _, c := range t.Counts {
		n += c
	}
	return n
}

// DistributeLoad tallies the load of each replica's RackGroup. Shard index j
// of replica i is tallied against target host j mod |hosts| of groups[i],
// which gives each of h hosts either floor(shards/h) or ceil(shards/h) shards,
// with the remainder absorbed by the leading hosts of the group.
//
// DistributeLoad doesn't modify Hosts or Racks. Use ApplyLoad to accumulate
// returned tallies into their loads and ownership.
func DistributeLoad(groups []*RackGroup, shards int) []LoadTally {
	var out = make([]LoadTally, len(groups))

	for i, g := range groups {
		var targets = g.HostsInGroupCreationOrder()
		var tally = LoadTally{
			Replica: i,
			Hosts:   targets,
			Counts:  make([]int, len(targets)),
		}
		for j := 0; j != shards; j++ {
			tally.Counts[j%len(targets)]++
		}
		out[i] = tally
	}
	return out
}

// ApplyLoad accumulates |tallies| into the load of each tallied Host, and of
// each Host's Rack, and recomputes their ownership relative to |total| shard
// slots (replicas * shards).
func ApplyLoad(tallies []LoadTally, racksByName map[string]*Rack, total int) {
	for _, tally := range tallies {
		for i, h := range tally.Hosts {
			var rack = racksByName[h.Rack]

			h.Load += tally.Counts[i]
			h.Owns = FormatOwnership(h.Load, total)
			rack.Load += tally.Counts[i]
			rack.Owns = FormatOwnership(rack.Load, total)
		}
	}
}
