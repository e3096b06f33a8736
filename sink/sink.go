// Package sink writes placement Plans to destinations named by URL. Each
// destination scheme is served by a provider which is registered at program
// startup, e.g.
//
//	sink.RegisterProviders(map[string]sink.Constructor{
//	    "file": fs.New,
//	    "s3":   s3.New,
//	})
//
// Blob providers (file://, s3://, gs://, azure://) encode a Plan as JSON or
// YAML and compress it, as determined by extensions of the destination path.
package sink

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"go.gazette.dev/rackplan/placement"
	"golang.org/x/sync/errgroup"
)

// Sink is a destination of written Plans.
type Sink interface {
	// Provider returns the name of the sink backend (e.g., "s3", "etcd", "fs").
	Provider() string
	// Write durably writes the Plan, replacing any Plan previously written.
	Write(ctx context.Context, plan *placement.Plan) error
	// Close releases clients and connections of the Sink.
	io.Closer
}

// Constructor is a function that creates a Sink from a URL.
// Each sink backend provides its own constructor implementation.
type Constructor func(*url.URL) (Sink, error)

var (
	constructors   = make(map[string]Constructor)
	constructorsMu sync.RWMutex
)

// RegisterProviders registers sink constructors for destination schemes.
// This should be called during initialization to register all available sink types.
func RegisterProviders(providers map[string]Constructor) {
	constructorsMu.Lock()
	defer constructorsMu.Unlock()

	for scheme, constructor := range providers {
		constructors[scheme] = constructor
	}
}

// GetProviders returns a copy of the currently registered sink constructors.
func GetProviders() map[string]Constructor {
	constructorsMu.RLock()
	defer constructorsMu.RUnlock()

	var copy = make(map[string]Constructor, len(constructors))
	for scheme, constructor := range constructors {
		copy[scheme] = constructor
	}
	return copy
}

// ParseDestination parses |dest| as a URL. Destinations without a scheme are
// local file paths, and are mapped to an absolute file:// URL.
func ParseDestination(dest string) (*url.URL, error) {
	var ep, err = url.Parse(dest)
	if err != nil {
		return nil, errors.WithMessagef(err, "parsing destination %q", dest)
	} else if ep.Scheme != "" {
		return ep, nil
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolving destination %q", dest)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// Open returns a Sink of the destination, using the Constructor registered
// for its scheme.
func Open(dest string) (Sink, error) {
	var ep, err = ParseDestination(dest)
	if err != nil {
		return nil, err
	}

	constructorsMu.RLock()
	var constructor, ok = constructors[ep.Scheme]
	constructorsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported sink scheme: %s", ep.Scheme)
	}
	s, err := constructor(ep)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening %s sink", ep.Scheme)
	}
	return s, nil
}

// OpenAll opens a Sink of each of |dests|.
func OpenAll(dests []string) ([]Sink, error) {
	var out = make([]Sink, 0, len(dests))
	for _, dest := range dests {
		var s, err = Open(dest)
		if err != nil {
			_ = CloseAll(out)
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// WriteAll writes |plan| to each of |sinks| concurrently, returning the first
// encountered error. The Plan must not be modified while WriteAll runs.
func WriteAll(ctx context.Context, plan *placement.Plan, sinks ...Sink) error {
	var group, groupCtx = errgroup.WithContext(ctx)

	for _, s := range sinks {
		group.Go(func() error {
			var started = time.Now()
			var err = s.Write(groupCtx, plan)
			var status = "ok"

			if err != nil {
				status = "error"
			}
			sinkWriteSeconds.WithLabelValues(s.Provider(), status).Observe(time.Since(started).Seconds())
			sinkWritesTotal.WithLabelValues(s.Provider(), status).Inc()

			if err != nil {
				return errors.WithMessagef(err, "writing plan to %s sink", s.Provider())
			}
			log.WithFields(log.Fields{
				"provider": s.Provider(),
				"plan":     plan.ID,
				"elapsed":  time.Since(started),
			}).Info("wrote plan")
			return nil
		})
	}
	return group.Wait()
}

// CloseAll closes each of |sinks|, returning the first encountered error.
func CloseAll(sinks []Sink) error {
	var first error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.WithFields(log.Fields{
				"provider": s.Provider(),
				"err":      err,
			}).Warn("failed to close sink")

			if first == nil {
				first = errors.WithMessagef(err, "closing %s sink", s.Provider())
			}
		}
	}
	return first
}

// ParseQueryArgs decodes the query arguments of |ep| into |args|,
// which is a struct having schema-decodable fields.
// Unknown query arguments are an error.
func ParseQueryArgs(ep *url.URL, args interface{}) error {
	var decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	if q, err := url.ParseQuery(ep.RawQuery); err != nil {
		return err
	} else if err = decoder.Decode(args, q); err != nil {
		return fmt.Errorf("parsing sink URL arguments: %s", err)
	}
	return nil
}

var (
	sinkWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rackplan_sink_writes_total",
		Help: "Total number of plan writes to sinks, by provider and status",
	}, []string{"provider", "status"})

	sinkWriteSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rackplan_sink_write_duration_seconds",
		Help:    "Duration of plan writes to sinks in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
	}, []string{"provider", "status"})

	blobPutBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rackplan_sink_blob_put_bytes",
		Help:    "Size of encoded plans written to blob stores in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
	}, []string{"provider", "codec"})
)
