// Package etcd provides the etcd:// sink, which writes Plans into an Etcd
// keyspace having one key per shard replica slot. Under the root prefix
// (the URL path), keys are laid out as:
//
//	<prefix>/plan                                     => Plan header (JSON)
//	<prefix>/members/<rack>#<host>                    => Host load & ownership (JSON)
//	<prefix>/assign/<shard>#<rack>#<host>#<replica>   => "" (empty)
//
// '#' is the separator of key components, and may not appear in rack or host
// names. Shard IDs are zero-padded so that assignments order on shard index.
//
// Writes converge the keyspace to the Plan: keys of a previous Plan which are
// not part of the new one are deleted, and unchanged keys are left as-is.
package etcd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/sink"
)

// SinkQueryArgs contains fields that are parsed from the query arguments
// of an etcd:// sink URL.
type SinkQueryArgs struct {
	// DialTimeout of the Etcd client, as a duration string. Default 10s.
	DialTimeout string
	// MaxTxnSize is the maximum number of operations of each Etcd
	// transaction. Plans requiring more operations are written in multiple
	// transactions, and are no longer applied atomically. Default 128.
	MaxTxnSize int
}

type etcdSink struct {
	client     *clientv3.Client // Owned client, or nil.
	kv         clientv3.KV
	prefix     string
	maxTxnSize int
}

// New creates a new Etcd Sink from the provided URL, of the form
// etcd://host:2379,other-host:2379/root/prefix.
func New(ep *url.URL) (sink.Sink, error) {
	var args = SinkQueryArgs{MaxTxnSize: defaultMaxTxnSize}
	if err := sink.ParseQueryArgs(ep, &args); err != nil {
		return nil, err
	}
	var prefix = strings.TrimSuffix(ep.Path, "/")

	if ep.Host == "" {
		return nil, fmt.Errorf("etcd:// sink requires endpoints")
	} else if prefix == "" {
		return nil, fmt.Errorf("etcd:// sink requires a root prefix")
	} else if args.MaxTxnSize < 1 {
		return nil, fmt.Errorf("invalid MaxTxnSize (%d; expected MaxTxnSize >= 1)", args.MaxTxnSize)
	}

	var dialTimeout = 10 * time.Second
	if args.DialTimeout != "" {
		var err error
		if dialTimeout, err = time.ParseDuration(args.DialTimeout); err != nil {
			return nil, errors.WithMessage(err, "parsing DialTimeout")
		}
	}

	var client, err = clientv3.New(clientv3.Config{
		Endpoints:   strings.Split(ep.Host, ","),
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "building etcd client")
	}

	log.WithFields(log.Fields{
		"endpoints": ep.Host,
		"prefix":    prefix,
	}).Info("constructed new etcd client")

	return &etcdSink{
		client:     client,
		kv:         client,
		prefix:     prefix,
		maxTxnSize: args.MaxTxnSize,
	}, nil
}

// NewSink returns a Sink which writes Plans under |prefix| of the KV.
// The KV remains owned by the caller, and isn't closed by the Sink.
func NewSink(kv clientv3.KV, prefix string, maxTxnSize int) sink.Sink {
	return &etcdSink{kv: kv, prefix: prefix, maxTxnSize: maxTxnSize}
}

func (s *etcdSink) Provider() string { return "etcd" }

func (s *etcdSink) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *etcdSink) Write(ctx context.Context, plan *placement.Plan) error {
	var resp, err = s.kv.Get(ctx, s.prefix+"/", clientv3.WithPrefix())
	if err != nil {
		return errors.WithMessage(err, "fetching current keyspace")
	}
	var current = make(map[string]string, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		current[string(kv.Key)] = string(kv.Value)
	}

	desired, err := BuildKeyValues(s.prefix, plan)
	if err != nil {
		return err
	}
	var ops = ConvergeOps(current, desired)

	var txn = newBatchedTxn(ctx, s.kv, s.maxTxnSize)
	for _, op := range ops {
		if err = txn.Then(op).Checkpoint(); err != nil {
			return err
		}
	}
	if _, err = txn.Commit(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"prefix": s.prefix,
		"ops":    len(ops),
		"txns":   txn.commits,
	}).Debug("converged etcd keyspace")

	return nil
}

const defaultMaxTxnSize = 128
