package placement

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlanNamespace is the UUID namespace of Plan IDs.
var PlanNamespace = uuid.MustParse("5d3a3f2e-52f4-4a8e-9d1b-8c6f0a4b7e21")

// Plan is an Assignment together with the inputs which produced it.
// Plans are deterministic: identical inputs produce identical Plans,
// including their ID.
type Plan struct {
	// ID is a name-based (SHA1) UUID of the Plan's canonical inputs.
	ID             string `json:"id" yaml:"id"`
	Shards         int    `json:"shards" yaml:"shards"`
	Replicas       int    `json:"replicas" yaml:"replicas"`
	RotateReplicas bool   `json:"rotateReplicas,omitempty" yaml:"rotateReplicas,omitempty"`

	Assignment `yaml:",inline"`
}

// NewPlan assigns |hosts| under |cfg| and returns the resulting Plan.
func NewPlan(hosts []*Host, cfg Config) (*Plan, error) {
	// Fingerprint inputs before Assign mutates |hosts|.
	var id = PlanID(hosts, cfg)

	var a, err = Assign(hosts, cfg)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ID:             id,
		Shards:         cfg.Shards,
		Replicas:       cfg.Replicas,
		RotateReplicas: cfg.RotateReplicas,
		Assignment:     *a,
	}, nil
}

// Config returns the Config from which the Plan was built.
func (p *Plan) Config() Config {
	return Config{Shards: p.Shards, Replicas: p.Replicas, RotateReplicas: p.RotateReplicas}
}

// PlanID returns the deterministic ID of a Plan of |hosts| under |cfg|.
func PlanID(hosts []*Host, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "shards=%d;replicas=%d;rotate=%t;", cfg.Shards, cfg.Replicas, cfg.RotateReplicas)

	for _, h := range hosts {
		b.WriteString(h.Rack)
		b.WriteByte('#')
		b.WriteString(h.Name)
		b.WriteByte(';')
	}
	return uuid.NewSHA1(PlanNamespace, []byte(b.String())).String()
}
