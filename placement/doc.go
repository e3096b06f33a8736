// Package placement computes a static assignment of shard replicas onto Hosts
// grouped into physical Racks. Racks are partitioned into one RackGroup per
// replica, so that replicas of a shard never share a RackGroup, and shard load
// is spread round-robin across the Hosts of each group.
//
// Placement runs as a fixed sequential pipeline over freshly built structures:
//
//	AggregateRacks -> RacksByHostCountDescending -> PartitionRacks
//	  -> DistributeLoad -> ApplyLoad -> AssignShards -> Summarize
//
// Assign runs the complete pipeline. Individual stages are exported so their
// ordering contracts may be inspected independently.
package placement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assignmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rackplan_assignments_total",
		Help: "Cumulative number of completed shard assignments.",
	})
	assignmentFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rackplan_assignment_failures_total",
		Help: "Cumulative number of rejected or failed shard assignments, by kind.",
	}, []string{"kind"})
	assignmentRuntimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "rackplan_assignment_runtime_seconds",
		Help: "Duration required to compute a complete shard assignment.",
	})
	shardSlotsAssignedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rackplan_shard_slots_assigned_total",
		Help: "Cumulative number of shard slots bound to hosts.",
	})
)
