package placement

import "fmt"

// HostRef is a snapshot of a Host's identity, bound to a Shard at assignment.
// It does not track later mutation of the Host.
type HostRef struct {
	Name string `json:"name" yaml:"name"`
	Rack string `json:"rack" yaml:"rack"`
}

// Shard is one replica slot of a logical shard. It's identified by its
// (Replica, Index) pair, and is bound to exactly one Host during assignment.
type Shard struct {
	Replica int      `json:"replica" yaml:"replica"`
	Index   int      `json:"index" yaml:"index"`
	Host    *HostRef `json:"host" yaml:"host"`
}

// Host is a member of exactly one Rack, to which Shards are bound.
type Host struct {
	Name   string   `json:"name" yaml:"name"`
	Rack   string   `json:"rack" yaml:"rack"`
	Shards []*Shard `json:"shards" yaml:"shards"`
	Load   int      `json:"load" yaml:"load"`
	Owns   string   `json:"owns" yaml:"owns"`
}

// NewHost returns a Host of the named Rack having no load.
func NewHost(name, rack string) *Host {
	return &Host{
		Name:   name,
		Rack:   rack,
		Shards: []*Shard{},
		Owns:   FormatOwnership(0, 0),
	}
}

// Ref returns the HostRef identity snapshot of the Host.
func (h *Host) Ref() *HostRef { return &HostRef{Name: h.Name, Rack: h.Rack} }

// Rack groups the Hosts which share a physical failure domain.
type Rack struct {
	Name  string  `json:"name" yaml:"name"`
	Hosts []*Host `json:"hosts" yaml:"hosts"`
	Load  int     `json:"load" yaml:"load"`
	Owns  string  `json:"owns" yaml:"owns"`
}

// ReplicaSet is the complete collection of one replica index's Shard slots,
// index-aligned with logical shard IDs.
type ReplicaSet struct {
	Replica int      `json:"replica" yaml:"replica"`
	Shards  []*Shard `json:"shards" yaml:"shards"`
}

// NewReplicaSets returns |replicas| ReplicaSets, each having |shards|
// unassigned Shard slots ordered on shard index.
func NewReplicaSets(replicas, shards int) []*ReplicaSet {
	var out = make([]*ReplicaSet, replicas)
	for i := range out {
		var rs = &ReplicaSet{Replica: i, Shards: make([]*Shard, shards)}
		for j := range rs.Shards {
			rs.Shards[j] = &Shard{Replica: i, Index: j}
		}
		out[i] = rs
	}
	return out
}

// RackSummary is a Rack stripped of its Hosts.
type RackSummary struct {
	Name string `json:"name" yaml:"name"`
	Load int    `json:"load" yaml:"load"`
	Owns string `json:"owns" yaml:"owns"`
}

// ReplicaSetSummary describes the Racks and number of distinct Hosts which
// participate in a ReplicaSet. Rack ownership is relative to the shards of
// the ReplicaSet alone.
type ReplicaSetSummary struct {
	Replica int           `json:"replica" yaml:"replica"`
	Racks   []RackSummary `json:"racks" yaml:"racks"`
	Hosts   int           `json:"hosts" yaml:"hosts"`
}

// FormatOwnership renders |load| as a percentage of |total| with two decimal
// places and a trailing percent sign. Exact halves round away from zero.
// A zero |load| is always "0.00%", including where |total| is zero.
func FormatOwnership(load, total int) string {
	if load == 0 || total == 0 {
		return "0.00%"
	}
	// Percentage in hundredths: load * 100 * 100 / total, rounded half-up.
	var num = int64(load) * 10000
	var q, r = num / int64(total), num % int64(total)

	if 2*r >= int64(total) {
		q++
	}
	return fmt.Sprintf("%d.%02d%%", q/100, q%100)
}
