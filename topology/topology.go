// Package topology describes the racks of a fleet and builds the Hosts which
// are placed upon by package placement.
//
// A Topology is an ordered mapping of rack name to host count. Its order is
// significant: Hosts are named with a global ordinal in Topology order, and
// racks of equal size retain their relative Topology order throughout
// placement. A YAML Topology document is a mapping such as:
//
//	sjc1-1: 20
//	sjc1-2: 2
//	sjc1-3: 3
//
// and is decoded in document order.
package topology

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/protocol"
	"gopkg.in/yaml.v2"
)

// RackSpec is a named rack and its number of hosts.
type RackSpec struct {
	Name  string
	Hosts int
}

// Validate returns an error if the RackSpec is not well-formed.
func (r RackSpec) Validate() error {
	if err := protocol.ValidateToken(r.Name, minRackNameLen, maxRackNameLen); err != nil {
		return protocol.ExtendContext(err, "Name")
	} else if err = protocol.ValidateNonNegative(r.Hosts, "Hosts"); err != nil {
		return err
	} else if r.Hosts > MaxHosts {
		return protocol.NewValidationError("invalid Hosts (%d; expected Hosts <= %d)", r.Hosts, MaxHosts)
	}
	return nil
}

// Topology is an ordered list of RackSpecs.
type Topology []RackSpec

// Validate returns a *placement.InvalidTopologyError if the Topology is not
// well-formed: each RackSpec must be valid with a unique Name, and the
// Topology must have between one and MaxHosts hosts.
func (t Topology) Validate() error {
	if err := t.validate(); err != nil {
		return &placement.InvalidTopologyError{Err: err}
	}
	return nil
}

func (t Topology) validate() error {
	var names = make(map[string]struct{}, len(t))
	var hosts int

	for i, r := range t {
		if err := r.Validate(); err != nil {
			return protocol.ExtendContext(err, "Racks[%d]", i)
		} else if _, ok := names[r.Name]; ok {
			return protocol.ExtendContext(
				protocol.NewValidationError("duplicate rack (%s)", r.Name), "Racks[%d]", i)
		}
		names[r.Name] = struct{}{}
		hosts += r.Hosts
	}
	if hosts == 0 {
		return protocol.NewValidationError("expected at least one host")
	} else if hosts > MaxHosts {
		return protocol.NewValidationError("expected at most %d hosts (got %d)", MaxHosts, hosts)
	}
	return nil
}

// HostCount returns the total number of hosts of the Topology.
func (t Topology) HostCount() (n int) {
	for _, r := range t {
		if r.Hosts > 0 {
			n += r.Hosts
		}
	}
	return n
}

// String returns the Topology in its flag form, "name=count,name=count".
func (t Topology) String() string {
	var parts = make([]string, len(t))
	for i, r := range t {
		parts[i] = r.Name + "=" + strconv.Itoa(r.Hosts)
	}
	return strings.Join(parts, ",")
}

// BuildHosts returns new Hosts of each rack of the Topology, in order.
// Hosts are named "h" followed by the last four digits of their zero-padded
// global ordinal. Racks with a non-positive count contribute no Hosts.
func BuildHosts(t Topology) []*placement.Host {
	var out = make([]*placement.Host, 0, t.HostCount())

	for _, r := range t {
		for i := 0; i < r.Hosts; i++ {
			out = append(out, placement.NewHost(HostName(len(out)), r.Name))
		}
	}
	return out
}

// HostName returns the name of the Host having global |ordinal|.
func HostName(ordinal int) string {
	var s = fmt.Sprintf("%04d", ordinal)
	return "h" + s[len(s)-4:]
}

// ParseRackFlag parses a "name=count" rack flag.
func ParseRackFlag(s string) (RackSpec, error) {
	var name, count, ok = strings.Cut(s, "=")
	if !ok {
		return RackSpec{}, fmt.Errorf("expected rack flag of form name=count (%q)", s)
	}
	var n, err = strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return RackSpec{}, errors.WithMessagef(err, "parsing host count of rack %q", name)
	}
	return RackSpec{Name: strings.TrimSpace(name), Hosts: n}, nil
}

// ParseRackFlags parses each of |flags| with ParseRackFlag, in order.
func ParseRackFlags(flags []string) (Topology, error) {
	var out Topology
	for _, f := range flags {
		var r, err = ParseRackFlag(f)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Decode a Topology from a YAML mapping of rack name to host count,
// retaining document order.
func Decode(r io.Reader) (Topology, error) {
	var doc yaml.MapSlice
	if err := yaml.NewDecoder(r).Decode(&doc); err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, errors.WithMessage(err, "decoding topology")
	}

	var out = make(Topology, 0, len(doc))
	for _, item := range doc {
		var name = fmt.Sprint(item.Key)

		var hosts, ok = item.Value.(int)
		if !ok {
			return nil, fmt.Errorf("rack %q: expected an integer host count (got %v)", name, item.Value)
		}
		out = append(out, RackSpec{Name: name, Hosts: hosts})
	}
	return out, nil
}

// Load decodes the Topology at |path| of |fs|.
func Load(fs afero.Fs, path string) (Topology, error) {
	var f, err = fs.Open(path)
	if err != nil {
		return nil, errors.WithMessage(err, "opening topology")
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return t, nil
}

// DefaultTopology is a sample fleet of five unevenly sized racks, used when
// no Topology is otherwise provided.
func DefaultTopology() Topology {
	return Topology{
		{Name: "sjc1-1", Hosts: 20},
		{Name: "sjc1-2", Hosts: 2},
		{Name: "sjc1-3", Hosts: 3},
		{Name: "sjc1-5", Hosts: 5},
		{Name: "sjc1-8", Hosts: 8},
	}
}

const (
	minRackNameLen, maxRackNameLen = 1, 128

	// MaxHosts is the largest Topology having unique HostNames.
	MaxHosts = 10000
)
