package placement

import (
	"time"

	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/protocol"
)

// Assignment is the complete placement of shard replicas onto Hosts.
type Assignment struct {
	// Rack loads and ownership without Host membership, keyed on Rack name.
	RacksSummary map[string]RackSummary `json:"racksSummary" yaml:"racksSummary"`
	// Rack and Host participation of each ReplicaSet.
	ReplicaSetsSummary []ReplicaSetSummary `json:"replicaSetsSummary" yaml:"replicaSetsSummary"`
	// Racks ordered on descending Host count.
	Racks []*Rack `json:"racks" yaml:"racks"`
	// Hosts in creation order, with their bound Shards.
	Hosts []*Host `json:"hosts" yaml:"hosts"`
	// ReplicaSets ordered on replica, with every Shard bound to a Host.
	ReplicaSets []*ReplicaSet `json:"replicaSets" yaml:"replicaSets"`
}

// Assign computes an Assignment of |cfg| over |hosts|, which must be newly
// built and not yet assigned. Hosts and their Racks are modified in place
// and are referenced by the returned Assignment; they must not be reused.
//
// Inputs which cannot be assigned return an *InvalidShardConfigError or
// *InvalidTopologyError before any modification is made.
func Assign(hosts []*Host, cfg Config) (*Assignment, error) {
	var started = time.Now()

	if err := cfg.Validate(); err != nil {
		assignmentFailuresTotal.WithLabelValues("invalid_shard_config").Inc()
		return nil, &InvalidShardConfigError{err}
	} else if err = validateHosts(hosts); err != nil {
		assignmentFailuresTotal.WithLabelValues("invalid_topology").Inc()
		return nil, &InvalidTopologyError{err}
	}

	var racksByName, rackNames = AggregateRacks(hosts)

	if err := validateTopology(hosts, rackNames, cfg.Replicas); err != nil {
		assignmentFailuresTotal.WithLabelValues("invalid_topology").Inc()
		return nil, err
	}

	var racks = RacksByHostCountDescending(racksByName, rackNames)
	var groups = PartitionRacks(cfg.Replicas, racks)

	if log.IsLevelEnabled(log.DebugLevel) {
		for i, g := range groups {
			var names []string
			for _, r := range g.Racks {
				names = append(names, r.Name)
			}
			log.WithFields(log.Fields{
				"replica": i,
				"racks":   names,
				"hosts":   g.HostCount(),
			}).Debug("partitioned rack group")
		}
	}

	var tallies = DistributeLoad(groups, cfg.Shards)
	ApplyLoad(tallies, racksByName, cfg.Replicas*cfg.Shards)

	var replicaSets = NewReplicaSets(cfg.Replicas, cfg.Shards)
	var queues = make([]*ShardQueue, cfg.Replicas)
	for i, rs := range replicaSets {
		queues[i] = NewShardQueue(rs, cfg.rotation(i))
	}
	if err := AssignShards(tallies, queues); err != nil {
		assignmentFailuresTotal.WithLabelValues("unassigned_shards").Inc()
		return nil, err
	}

	var out = &Assignment{
		RacksSummary:       SummarizeRacks(racksByName),
		ReplicaSetsSummary: SummarizeReplicaSets(replicaSets, cfg.Shards),
		Racks:              racks,
		Hosts:              hosts,
		ReplicaSets:        replicaSets,
	}

	assignmentsTotal.Inc()
	assignmentRuntimeSeconds.Observe(time.Since(started).Seconds())

	log.WithFields(log.Fields{
		"hosts":    len(hosts),
		"racks":    len(racks),
		"shards":   cfg.Shards,
		"replicas": cfg.Replicas,
	}).Debug("computed assignment")

	return out, nil
}

func validateHosts(hosts []*Host) error {
	var names = make(map[string]struct{}, len(hosts))

	for i, h := range hosts {
		if _, ok := names[h.Name]; ok {
			return protocol.ExtendContext(
				protocol.NewValidationError("duplicate host name (%s)", h.Name), "Hosts[%d]", i)
		} else if h.Load != 0 || len(h.Shards) != 0 {
			return protocol.ExtendContext(
				protocol.NewValidationError("host %s is already assigned", h.Name), "Hosts[%d]", i)
		}
		names[h.Name] = struct{}{}
	}
	return nil
}
