package placement

import (
	"cmp"
	"slices"
)

// AggregateRacks groups |hosts| on their Rack. It returns Racks indexed by
// name, and the names of Racks in the order they were first seen. Hosts of
// each Rack retain their relative order within |hosts|.
func AggregateRacks(hosts []*Host) (racksByName map[string]*Rack, rackNames []string) {
	racksByName = make(map[string]*Rack)

	for _, h := range hosts {
		if r, ok := racksByName[h.Rack]; ok {
			r.Hosts = append(r.Hosts, h)
			continue
		}
		racksByName[h.Rack] = &Rack{
			Name:  h.Rack,
			Hosts: []*Host{h},
			Owns:  FormatOwnership(0, 0),
		}
		rackNames = append(rackNames, h.Rack)
	}
	return racksByName, rackNames
}

// RacksByHostCountDescending returns the Racks of |rackNames| ordered on
// descending number of Hosts. Racks having equal numbers of Hosts retain
// their order within |rackNames|.
func RacksByHostCountDescending(racksByName map[string]*Rack, rackNames []string) []*Rack {
	var out = make([]*Rack, len(rackNames))
	for i, name := range rackNames {
		out[i] = racksByName[name]
	}
	slices.SortStableFunc(out, func(a, b *Rack) int {
		return cmp.Compare(len(b.Hosts), len(a.Hosts))
	})
	return out
}
