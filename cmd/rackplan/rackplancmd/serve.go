package rackplancmd

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	mbp "go.gazette.dev/rackplan/mainboilerplate"
	"go.gazette.dev/rackplan/planner"
	"golang.org/x/sync/errgroup"
)

type cmdServe struct {
	TopologyConfig
	PlanConfig

	Port        string                `long:"port" env:"RACKPLAN_PORT" default:"8080" description:"Service port for HTTP"`
	CacheSize   int                   `long:"cache-size" env:"RACKPLAN_CACHE_SIZE" default:"64" description:"Number of distinct plans to cache"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"RACKPLAN_DEBUG"`
}

func init() {
	CommandRegistry.AddCommand("", "serve", "Serve plans of a topology over HTTP", `
Serve plans of the configured topology until signaled to exit (via SIGTERM
or SIGINT). Plans are requested with:
>    GET /plan?shards=128&replicas=3&rotate=true&format=yaml

Omitted parameters take the values of --shards, --replicas, and
--rotate-replicas. The format may be json (the default), yaml, or table.
Responses carry the plan ID in an X-Plan-Id header.

Liveness is served at /debug/ready, and Prometheus metrics at /debug/metrics.
`, &cmdServe{})
}

func (cmd *cmdServe) Execute([]string) error {
	var mux = http.NewServeMux()
	defer mbp.InitDiagnosticsAndRecover(mux, cmd.Diagnostics)()
	startup()

	var topo, err = cmd.Resolve(FS)
	if err != nil {
		return err
	}
	p, err := planner.New(topo, cmd.Config(), cmd.CacheSize)
	if err != nil {
		return err
	}
	mux.Handle("/plan", p)

	var srv = &http.Server{Addr: net.JoinHostPort("", cmd.Port), Handler: mux}

	var ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	var tasks, tasksCtx = errgroup.WithContext(ctx)

	tasks.Go(func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	tasks.Go(func() error {
		<-tasksCtx.Done()
		return srv.Shutdown(context.Background())
	})

	log.WithFields(log.Fields{
		"addr":     srv.Addr,
		"topology": topo.String(),
	}).Info("serving plans")

	err = tasks.Wait()
	log.Info("goodbye")
	return err
}
