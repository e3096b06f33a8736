// Package rackplancmd implements the sub-commands of the rackplan tool.
package rackplancmd

import (
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	mbp "go.gazette.dev/rackplan/mainboilerplate"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/sink"
	"go.gazette.dev/rackplan/sink/azure"
	"go.gazette.dev/rackplan/sink/etcd"
	"go.gazette.dev/rackplan/sink/fs"
	"go.gazette.dev/rackplan/sink/gcs"
	"go.gazette.dev/rackplan/sink/s3"
	"go.gazette.dev/rackplan/sink/sqldb"
	"go.gazette.dev/rackplan/topology"
)

const iniFilename = "rackplan.ini"

var (
	baseCfg = new(struct {
		Log mbp.LogConfig `group:"Logging" namespace:"log" env-namespace:"RACKPLAN_LOG"`
	})

	// CommandRegistry holds rackplan sub-commands, which register
	// themselves from init.
	CommandRegistry = mbp.NewCommandRegistry()

	// FS is the filesystem from which topologies and plans are read.
	FS afero.Fs = afero.NewOsFs()
)

// TopologyConfig locates the Topology to plan. At most one of --topology
// or --rack may be used. If neither is, a built-in sample Topology is used.
type TopologyConfig struct {
	Path  string   `long:"topology" env:"RACKPLAN_TOPOLOGY" description:"Path of a YAML topology mapping rack names to host counts"`
	Racks []string `long:"rack" description:"Rack of the topology, as name=count. May be repeated, and racks retain their order"`
}

// Resolve returns the configured and validated Topology.
func (cfg TopologyConfig) Resolve(fs afero.Fs) (topology.Topology, error) {
	var topo topology.Topology
	var err error

	switch {
	case cfg.Path != "" && len(cfg.Racks) != 0:
		return nil, errors.New("--topology and --rack are mutually exclusive")
	case cfg.Path != "":
		topo, err = topology.Load(fs, cfg.Path)
	case len(cfg.Racks) != 0:
		topo, err = topology.ParseRackFlags(cfg.Racks)
	default:
		topo = topology.DefaultTopology()
		log.WithField("topology", topo.String()).Info("using sample topology")
	}

	if err != nil {
		return nil, err
	} else if err = topo.Validate(); err != nil {
		return nil, err
	}
	return topo, nil
}

// PlanConfig parameterizes a Plan.
type PlanConfig struct {
	Shards         int  `long:"shards" env:"RACKPLAN_SHARDS" default:"128" description:"Number of shards of each replica"`
	Replicas       int  `long:"replicas" env:"RACKPLAN_REPLICAS" default:"3" description:"Number of replicas of each shard. Must not exceed the number of racks"`
	RotateReplicas bool `long:"rotate-replicas" env:"RACKPLAN_ROTATE_REPLICAS" description:"Rotate the shard order of each replica, so that hosts of different replicas don't hold the same shard ranges"`
}

// Config returns the placement.Config of the PlanConfig.
func (cfg PlanConfig) Config() placement.Config {
	return placement.Config{
		Shards:         cfg.Shards,
		Replicas:       cfg.Replicas,
		RotateReplicas: cfg.RotateReplicas,
	}
}

func startup() {
	mbp.InitLog(baseCfg.Log)
	registerSinks()
}

func registerSinks() {
	sink.RegisterProviders(map[string]sink.Constructor{
		"azure":      azure.New,
		"etcd":       etcd.New,
		"file":       fs.New,
		"gs":         gcs.New,
		"memory":     sink.NewMemory,
		"postgres":   sqldb.New,
		"postgresql": sqldb.New,
		"s3":         s3.New,
		"sqlite":     sqldb.New,
		"sqlite3":    sqldb.New,
	})
}

// Execute parses configuration and runs the selected sub-command.
func Execute() {
	var parser = flags.NewParser(baseCfg, flags.Default)

	mbp.AddPrintConfigCmd(parser, iniFilename)
	parser.LongDescription = `rackplan computes rack-aware placements of replicated shards onto hosts.

	See --help pages of each sub-command for documentation and usage examples.
	Optionally configure rackplan with a '` + iniFilename + `' file in the current working directory,
	or with '~/.config/rackplan/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
	the tool's current configuration.
	`
	mbp.Must(CommandRegistry.AddCommands("", parser.Command, true), "could not add subcommand")
	mbp.MustParseConfig(parser, iniFilename)
}
