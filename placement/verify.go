package placement

import (
	"go.gazette.dev/rackplan/protocol"
)

// Validate checks the Plan's structural invariants, returning a descriptive
// *protocol.ValidationError of the first violation found. Validate is
// applicable to decoded Plans, which do not share Host instances between
// their Racks, Hosts, and ReplicaSets.
func (p *Plan) Validate() error {
	if err := p.Config().Validate(); err != nil {
		return err
	} else if len(p.ReplicaSets) != p.Replicas {
		return protocol.NewValidationError("expected %d ReplicaSets (got %d)", p.Replicas, len(p.ReplicaSets))
	}
	var total = p.Replicas * p.Shards

	// Index Hosts, and check their bound shards and ownership.
	var hosts = make(map[string]*Host, len(p.Hosts))
	var rackLoad = make(map[string]int)
	var sum int

	for i, h := range p.Hosts {
		if _, ok := hosts[h.Name]; ok {
			return protocol.ExtendContext(protocol.NewValidationError("duplicate host (%s)", h.Name), "Hosts[%d]", i)
		} else if len(h.Shards) != h.Load {
			return protocol.ExtendContext(protocol.NewValidationError(
				"bound shards differ from load (%d vs %d)", len(h.Shards), h.Load), "Hosts[%d]", i)
		} else if o := FormatOwnership(h.Load, total); o != h.Owns {
			return protocol.ExtendContext(protocol.NewValidationError(
				"inconsistent ownership (%s; expected %s)", h.Owns, o), "Hosts[%d]", i)
		}
		hosts[h.Name] = h
		rackLoad[h.Rack] += h.Load
		sum += h.Load
	}
	if sum != total {
		return protocol.NewValidationError("sum of host loads (%d) != replicas * shards (%d)", sum, total)
	}

	for name := range rackLoad {
		if _, ok := p.RacksSummary[name]; !ok {
			return protocol.ExtendContext(protocol.NewValidationError("missing rack (%s)", name), "RacksSummary")
		}
	}
	for name, r := range p.RacksSummary {
		if _, ok := rackLoad[name]; !ok {
			return protocol.ExtendContext(protocol.NewValidationError(
				"rack has no hosts"), "RacksSummary[%s]", name)
		} else if r.Name != name {
			return protocol.ExtendContext(protocol.NewValidationError(
				"unexpected Name (%s)", r.Name), "RacksSummary[%s]", name)
		} else if r.Load != rackLoad[name] {
			return protocol.ExtendContext(protocol.NewValidationError(
				"rack load differs from its hosts (%d vs %d)", r.Load, rackLoad[name]), "RacksSummary[%s]", name)
		} else if o := FormatOwnership(r.Load, total); o != r.Owns {
			return protocol.ExtendContext(protocol.NewValidationError(
				"inconsistent ownership (%s; expected %s)", r.Owns, o), "RacksSummary[%s]", name)
		}
	}

	if err := p.validateRacks(hosts); err != nil {
		return err
	}

	// Check every slot is bound, and that ReplicaSets use disjoint racks.
	var rackReplica = make(map[string]int)

	for i, rs := range p.ReplicaSets {
		if rs.Replica != i {
			return protocol.ExtendContext(protocol.NewValidationError(
				"unexpected Replica (%d)", rs.Replica), "ReplicaSets[%d]", i)
		} else if len(rs.Shards) != p.Shards {
			return protocol.ExtendContext(protocol.NewValidationError(
				"expected %d shards (got %d)", p.Shards, len(rs.Shards)), "ReplicaSets[%d]", i)
		}
		for j, s := range rs.Shards {
			var err error

			if s.Replica != i || s.Index != j {
				err = protocol.NewValidationError("unexpected shard identity (%d, %d)", s.Replica, s.Index)
			} else if s.Host == nil {
				err = protocol.NewValidationError("shard is not assigned")
			} else if h, ok := hosts[s.Host.Name]; !ok {
				err = protocol.NewValidationError("unknown host (%s)", s.Host.Name)
			} else if h.Rack != s.Host.Rack {
				err = protocol.NewValidationError("host %s is not in rack %s", h.Name, s.Host.Rack)
			} else if other, ok := rackReplica[h.Rack]; ok && other != i {
				err = protocol.NewValidationError("rack %s also hosts replica %d", h.Rack, other)
			} else {
				rackReplica[h.Rack] = i
			}

			if err != nil {
				return protocol.ExtendContext(protocol.ExtendContext(err, "Shards[%d]", j), "ReplicaSets[%d]", i)
			}
		}
	}
	return p.validateReplicaSetsSummary()
}

// validateRacks checks that Racks agree with RacksSummary and partition |hosts|.
func (p *Plan) validateRacks(hosts map[string]*Host) error {
	if len(p.Racks) != len(p.RacksSummary) {
		return protocol.NewValidationError("expected %d Racks (got %d)", len(p.RacksSummary), len(p.Racks))
	}
	var seen = make(map[string]struct{}, len(p.Racks))
	var bound int

	for i, r := range p.Racks {
		var summary, ok = p.RacksSummary[r.Name]
		var err error

		if _, dup := seen[r.Name]; dup {
			err = protocol.NewValidationError("duplicate rack (%s)", r.Name)
		} else if !ok {
			err = protocol.NewValidationError("unknown rack (%s)", r.Name)
		} else if r.Load != summary.Load || r.Owns != summary.Owns {
			err = protocol.NewValidationError("rack differs from its summary (%d, %s vs %d, %s)",
				r.Load, r.Owns, summary.Load, summary.Owns)
		}
		if err != nil {
			return protocol.ExtendContext(err, "Racks[%d]", i)
		}
		seen[r.Name] = struct{}{}

		for j, h := range r.Hosts {
			if other, ok := hosts[h.Name]; !ok || other.Rack != r.Name {
				return protocol.ExtendContext(protocol.ExtendContext(protocol.NewValidationError(
					"host %s is not in rack %s", h.Name, r.Name), "Hosts[%d]", j), "Racks[%d]", i)
			}
		}
		bound += len(r.Hosts)
	}
	if bound != len(hosts) {
		return protocol.NewValidationError("Racks hold %d hosts (expected %d)", bound, len(hosts))
	}
	return nil
}

// validateReplicaSetsSummary checks ReplicaSetsSummary against summaries
// recomputed from the ReplicaSets, which must be fully assigned.
func (p *Plan) validateReplicaSetsSummary() error {
	if len(p.ReplicaSetsSummary) != len(p.ReplicaSets) {
		return protocol.NewValidationError("expected %d ReplicaSetsSummary (got %d)",
			len(p.ReplicaSets), len(p.ReplicaSetsSummary))
	}
	for i, expect := range SummarizeReplicaSets(p.ReplicaSets, p.Shards) {
		var got = p.ReplicaSetsSummary[i]
		var err error

		if got.Replica != expect.Replica {
			err = protocol.NewValidationError("unexpected Replica (%d)", got.Replica)
		} else if got.Hosts != expect.Hosts {
			err = protocol.NewValidationError("expected %d hosts (got %d)", expect.Hosts, got.Hosts)
		} else if len(got.Racks) != len(expect.Racks) {
			err = protocol.NewValidationError("expected %d racks (got %d)", len(expect.Racks), len(got.Racks))
		} else {
			for j := range expect.Racks {
				if got.Racks[j] != expect.Racks[j] {
					err = protocol.ExtendContext(protocol.NewValidationError(
						"expected %+v (got %+v)", expect.Racks[j], got.Racks[j]), "Racks[%d]", j)
					break
				}
			}
		}
		if err != nil {
			return protocol.ExtendContext(err, "ReplicaSetsSummary[%d]", i)
		}
	}
	return nil
}
