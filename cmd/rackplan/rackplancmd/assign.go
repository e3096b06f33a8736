package rackplancmd

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
	"go.gazette.dev/rackplan/render"
	"go.gazette.dev/rackplan/sink"
	"go.gazette.dev/rackplan/topology"
)

type cmdAssign struct {
	TopologyConfig
	PlanConfig

	Format string   `long:"format" short:"o" choice:"table" choice:"yaml" choice:"json" default:"table" description:"Output format"`
	Hosts  bool     `long:"hosts" description:"Include a table of every host and its shards (table format only)"`
	Write  []string `long:"write" env:"RACKPLAN_WRITE" env-delim:"," description:"Destination URL to which the plan is written. May be repeated"`
}

func init() {
	CommandRegistry.AddCommand("", "assign", "Assign shards of a topology to hosts", `
Assign the replicas of each shard to hosts of the topology, such that each
replica is served by a disjoint group of racks and load is balanced across
hosts.

The topology is read from a YAML file of rack names and host counts:
>    sjc1-1: 20
>    sjc1-2: 2

or given as repeated --rack flags:
>    --rack sjc1-1=20 --rack sjc1-2=2

Results can be output in a variety of --format options:
table: Prints rack, replica, and (with --hosts) host tables.
yaml:  Prints the plan encoded as YAML.
json:  Prints the plan encoded as JSON.

The plan may also be written to one or more --write destinations. Paths
without a URL scheme are local files. Supported schemes are file://, s3://,
gs://, azure://, etcd://, sqlite://, postgres://, and memory://. Blob
destinations are encoded as JSON, or as YAML if the path ends in .yaml, and
are compressed if the path ends in .gz, .sz, or .zst:
>    --write plans/current.json.gz --write s3://bucket/plans/current.yaml
`, &cmdAssign{})
}

func (cmd *cmdAssign) Execute([]string) error {
	startup()

	var plan, err = cmd.plan(FS)
	if err != nil {
		return err
	}
	if err = cmd.output(os.Stdout, plan); err != nil {
		return errors.WithMessage(err, "writing output")
	}
	return cmd.write(context.Background(), plan)
}

func (cmd *cmdAssign) plan(fs afero.Fs) (*placement.Plan, error) {
	var topo, err = cmd.Resolve(fs)
	if err != nil {
		return nil, err
	}
	plan, err := placement.NewPlan(topology.BuildHosts(topo), cmd.Config())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"id":       plan.ID,
		"racks":    len(topo),
		"hosts":    topo.HostCount(),
		"shards":   plan.Shards,
		"replicas": plan.Replicas,
	}).Info("built plan")

	return plan, nil
}

func (cmd *cmdAssign) output(w io.Writer, plan *placement.Plan) error {
	if cmd.Format == "table" {
		render.Plan(w, plan, cmd.Hosts)
		return nil
	}
	return planfmt.Encode(w, plan, planfmt.Format(cmd.Format))
}

func (cmd *cmdAssign) write(ctx context.Context, plan *placement.Plan) error {
	if len(cmd.Write) == 0 {
		return nil
	}
	var sinks, err = sink.OpenAll(cmd.Write)
	if err != nil {
		return err
	}
	if err = sink.WriteAll(ctx, plan, sinks...); err != nil {
		_ = sink.CloseAll(sinks)
		return err
	}
	return sink.CloseAll(sinks)
}
