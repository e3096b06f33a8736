// Package planner serves placement Plans of a fixed Topology over HTTP.
// Plans are deterministic, and are cached on their Config.
package planner

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	"github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
	"go.gazette.dev/rackplan/render"
	"go.gazette.dev/rackplan/topology"
)

// Planner computes and caches Plans of a Topology.
type Planner struct {
	topology topology.Topology
	defaults placement.Config
	cache    *lru.Cache
}

// New returns a Planner of the Topology, which must be valid. |defaults|
// parameterize requests which don't specify a Config field. |cacheSize|
// must be > 0.
func New(topo topology.Topology, defaults placement.Config, cacheSize int) (*Planner, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	var cache, err = lru.New(cacheSize)
	if err != nil {
		return nil, err // Only errors on size <= 0.
	}
	return &Planner{
		topology: topo,
		defaults: defaults,
		cache:    cache,
	}, nil
}

// Plan returns the Plan of |cfg|. Returned Plans may be shared with other
// callers, and must not be modified.
func (p *Planner) Plan(cfg placement.Config) (*placement.Plan, error) {
	if v, ok := p.cache.Get(cfg); ok {
		planCacheTotal.WithLabelValues("hit").Inc()
		return v.(*placement.Plan), nil
	}
	planCacheTotal.WithLabelValues("miss").Inc()

	var plan, err = placement.NewPlan(topology.BuildHosts(p.topology), cfg)
	if err != nil {
		return nil, err
	}
	p.cache.Add(cfg, plan)
	return plan, nil
}

// PlanQuery is the URL query of a plan request.
type PlanQuery struct {
	Shards   int    `schema:"shards"`
	Replicas int    `schema:"replicas"`
	Rotate   bool   `schema:"rotate"`
	Format   string `schema:"format"`
	Hosts    bool   `schema:"hosts"`
}

// ServeHTTP serves GET requests for a Plan, parameterized by PlanQuery.
// The "format" may be json (the default), yaml, or table.
func (p *Planner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var query = PlanQuery{
		Shards:   p.defaults.Shards,
		Replicas: p.defaults.Replicas,
		Rotate:   p.defaults.RotateReplicas,
		Format:   string(planfmt.JSON),
	}
	if err := decodeQuery(r, &query); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var format = strings.ToLower(query.Format)
	if format != "table" {
		if err := planfmt.Format(format).Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var plan, err = p.Plan(placement.Config{
		Shards:         query.Shards,
		Replicas:       query.Replicas,
		RotateReplicas: query.Rotate,
	})
	if placement.IsInvalidShardConfig(err) || placement.IsInvalidTopology(err) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if err != nil {
		log.WithField("err", err).Error("failed to compute plan")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if format == "table" {
		render.Plan(&buf, plan, query.Hosts)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else if err = planfmt.Encode(&buf, plan, planfmt.Format(format)); err != nil {
		log.WithField("err", err).Error("failed to encode plan")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	} else {
		w.Header().Set("Content-Type", planfmt.Format(format).ContentType())
	}
	w.Header().Set("X-Plan-Id", plan.ID)
	_, _ = w.Write(buf.Bytes())
}

func decodeQuery(r *http.Request, into *PlanQuery) error {
	var decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	if err := r.ParseForm(); err != nil {
		return err
	} else if err = decoder.Decode(into, r.Form); err != nil {
		return errors.WithMessage(err, "parsing query")
	}
	return nil
}

var planCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rackplan_planner_cache_total",
	Help: "Total number of plan cache lookups, by result",
}, []string{"result"})
