// Package render presents placement Plans as human-readable tables.
package render

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.gazette.dev/rackplan/placement"
)

// Plan writes a summary line of |plan|, followed by its Racks, ReplicaSets,
// and (if |hosts|) Hosts tables.
func Plan(w io.Writer, plan *placement.Plan, hosts bool) {
	var slots = int64(plan.Shards) * int64(plan.Replicas)

	fmt.Fprintf(w, "Plan %s: %s shards x %d replicas = %s slots over %d hosts in %d racks\n",
		plan.ID, humanize.Comma(int64(plan.Shards)), plan.Replicas,
		humanize.Comma(slots), len(plan.Hosts), len(plan.Racks))

	Racks(w, plan)
	ReplicaSets(w, plan)

	if hosts {
		Hosts(w, plan)
	}
}

// Racks writes a table of each Rack, its load and ownership, and the
// replica it hosts.
func Racks(w io.Writer, plan *placement.Plan) {
	var replicaOf = make(map[string]string)
	for _, rs := range plan.ReplicaSetsSummary {
		for _, r := range rs.Racks {
			replicaOf[r.Name] = strconv.Itoa(rs.Replica)
		}
	}

	var names = make([]string, 0, len(plan.RacksSummary))
	for name := range plan.RacksSummary {
		names = append(names, name)
	}
	slices.Sort(names)

	var hostCounts = make(map[string]int)
	for _, h := range plan.Hosts {
		hostCounts[h.Rack]++
	}

	var table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rack", "Hosts", "Load", "Owns", "Replica"})

	for _, name := range names {
		var r = plan.RacksSummary[name]
		var replica = replicaOf[name]
		if replica == "" {
			replica = "<none>"
		}
		table.Append([]string{
			r.Name,
			strconv.Itoa(hostCounts[name]),
			humanize.Comma(int64(r.Load)),
			r.Owns,
			replica,
		})
	}
	table.Render()
}

// ReplicaSets writes a table of each ReplicaSet and its participating Racks.
func ReplicaSets(w io.Writer, plan *placement.Plan) {
	var table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Replica", "Hosts", "Racks"})

	for _, rs := range plan.ReplicaSetsSummary {
		var racks []string
		for _, r := range rs.Racks {
			racks = append(racks, fmt.Sprintf("%s (%s, %s)", r.Name, humanize.Comma(int64(r.Load)), r.Owns))
		}
		if len(racks) == 0 {
			racks = append(racks, "<none>")
		}
		table.Append([]string{
			strconv.Itoa(rs.Replica),
			strconv.Itoa(rs.Hosts),
			strings.Join(racks, ", "),
		})
	}
	table.Render()
}

// Hosts writes a table of each Host with its load, ownership, and the
// shard indices bound to it.
func Hosts(w io.Writer, plan *placement.Plan) {
	var table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Host", "Rack", "Load", "Owns", "Shards"})

	for _, h := range plan.Hosts {
		table.Append([]string{
			h.Name,
			h.Rack,
			humanize.Comma(int64(h.Load)),
			h.Owns,
			ShardRanges(h.Shards),
		})
	}
	table.Render()
}

// ShardRanges renders the replica and index of |shards| as compact runs,
// such as "r0:0-12,40".
func ShardRanges(shards []*placement.Shard) string {
	if len(shards) == 0 {
		return "<none>"
	}
	var parts []string
	var replica, begin, end = shards[0].Replica, shards[0].Index, shards[0].Index

	var flush = func() {
		var run = strconv.Itoa(begin)
		if end != begin {
			run += "-" + strconv.Itoa(end)
		}
		parts = append(parts, fmt.Sprintf("r%d:%s", replica, run))
	}
	for _, s := range shards[1:] {
		if s.Replica == replica && s.Index == end+1 {
			end = s.Index
			continue
		}
		flush()
		replica, begin, end = s.Replica, s.Index, s.Index
	}
	flush()

	return strings.Join(parts, ",")
}
