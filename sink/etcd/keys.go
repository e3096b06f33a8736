package etcd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.gazette.dev/rackplan/placement"
)

const (
	// PlanKey suffixes the key of the Plan header, eg "root/plan".
	PlanKey = "/plan"
	// MembersPrefix prefixes Host keys, eg "root/members/rack#host".
	MembersPrefix = "/members/"
	// AssignmentsPrefix prefixes slot keys, eg "root/assign/shard-007#rack#host#1".
	AssignmentsPrefix = "/assign/"
	// Sep separates components of member and assignment keys.
	Sep = "#"
)

// KeyValue is a desired key and its value.
type KeyValue struct {
	Key, Value string
}

// MemberKey returns the key of Host |host| of |rack|.
func MemberKey(prefix, rack, host string) string {
	return prefix + MembersPrefix + rack + Sep + host
}

// AssignmentKey returns the key of the |replica| slot of |shardID|, bound to
// |host| of |rack|.
func AssignmentKey(prefix, shardID, rack, host string, replica int) string {
	return prefix + AssignmentsPrefix + shardID + Sep + rack + Sep + host + Sep + strconv.Itoa(replica)
}

// ShardID returns the zero-padded ID of shard |index| of |shards|.
func ShardID(index, shards int) string {
	var width = len(strconv.Itoa(shards - 1))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("shard-%0*d", width, index)
}

type planHeader struct {
	ID             string `json:"id"`
	Shards         int    `json:"shards"`
	Replicas       int    `json:"replicas"`
	RotateReplicas bool   `json:"rotateReplicas,omitempty"`
}

type memberValue struct {
	Load int    `json:"load"`
	Owns string `json:"owns"`
}

// BuildKeyValues returns the KeyValues of |plan| under |prefix|, ordered on key.
// Every Shard of the Plan must be bound.
func BuildKeyValues(prefix string, plan *placement.Plan) ([]KeyValue, error) {
	var out []KeyValue

	var header, err = json.Marshal(planHeader{
		ID:             plan.ID,
		Shards:         plan.Shards,
		Replicas:       plan.Replicas,
		RotateReplicas: plan.RotateReplicas,
	})
	if err != nil {
		return nil, err
	}
	out = append(out, KeyValue{Key: prefix + PlanKey, Value: string(header)})

	for _, h := range plan.Hosts {
		var b, err = json.Marshal(memberValue{Load: h.Load, Owns: h.Owns})
		if err != nil {
			return nil, err
		}
		out = append(out, KeyValue{Key: MemberKey(prefix, h.Rack, h.Name), Value: string(b)})
	}
	for _, rs := range plan.ReplicaSets {
		for _, s := range rs.Shards {
			if s.Host == nil {
				return nil, fmt.Errorf("shard (%d, %d) is not assigned", s.Replica, s.Index)
			}
			out = append(out, KeyValue{
				Key: AssignmentKey(prefix, ShardID(s.Index, plan.Shards), s.Host.Rack, s.Host.Name, s.Replica),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ConvergeOps returns operations which converge |current| keys and values
// to |desired|. Stale keys are deleted before desired keys are put, and
// keys already having their desired value are skipped.
func ConvergeOps(current map[string]string, desired []KeyValue) []clientv3.Op {
	var ops []clientv3.Op
	var want = make(map[string]struct{}, len(desired))

	for _, kv := range desired {
		want[kv.Key] = struct{}{}
	}

	var stale []string
	for key := range current {
		if _, ok := want[key]; !ok {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)

	for _, key := range stale {
		ops = append(ops, clientv3.OpDelete(key))
	}
	for _, kv := range desired {
		if v, ok := current[kv.Key]; ok && v == kv.Value {
			continue
		}
		ops = append(ops, clientv3.OpPut(kv.Key, kv.Value))
	}
	return ops
}
