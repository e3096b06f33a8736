package placement

// SummarizeRacks returns a RackSummary of each Rack, keyed on Rack name.
func SummarizeRacks(racksByName map[string]*Rack) map[string]RackSummary {
	var out = make(map[string]RackSummary, len(racksByName))
	for name, r := range racksByName {
		out[name] = RackSummary{Name: r.Name, Load: r.Load, Owns: r.Owns}
	}
	return out
}

// SummarizeReplicaSets returns a ReplicaSetSummary of each of the assigned
// |replicaSets|. Racks of a summary are ordered on first appearance within
// the ReplicaSet's shards, and their ownership is relative to |shards|.
// Every Shard must be bound to a Host.
func SummarizeReplicaSets(replicaSets []*ReplicaSet, shards int) []ReplicaSetSummary {
	var out = make([]ReplicaSetSummary, len(replicaSets))

	for i, rs := range replicaSets {
		var summary = ReplicaSetSummary{Replica: i, Racks: []RackSummary{}}
		var rackInd = make(map[string]int)
		var hosts = make(map[string]struct{})

		for _, s := range rs.Shards {
			var ind, ok = rackInd[s.Host.Rack]
			if !ok {
				ind = len(summary.Racks)
				rackInd[s.Host.Rack] = ind
				summary.Racks = append(summary.Racks, RackSummary{Name: s.Host.Rack})
			}
			var r = &summary.Racks[ind]
			r.Load++
			r.Owns = FormatOwnership(r.Load, shards)

			if _, ok = hosts[s.Host.Name]; !ok {
				hosts[s.Host.Name] = struct{}{}
				summary.Hosts++
			}
		}
		out[i] = summary
	}
	return out
}
