// Package sqldb provides sqlite:// and postgres:// sinks, which write Plans as
// rows of a relational database. Tables are created if they don't exist:
//
//	rackplan_plans  (id, shards, replicas, rotate_replicas)
//	rackplan_hosts  (plan_id, name, rack, host_load, owns)
//	rackplan_shards (plan_id, replica, shard_index, host, rack)
//
// A Plan is written in a single SQL transaction, and re-writing a Plan
// having the same ID replaces its rows.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/lib/pq"           // Registers the "postgres" driver.
	_ "github.com/mattn/go-sqlite3" // Registers the "sqlite3" driver.
	"github.com/pkg/errors"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/sink"
)

// Sink writes Plans to a *sql.DB.
type Sink struct {
	DB *sql.DB

	provider string
}

// NewSink returns a Sink of the *DB.
func NewSink(db *sql.DB, provider string) *Sink {
	return &Sink{DB: db, provider: provider}
}

// New creates a new SQL Sink from the provided URL. sqlite:// URLs name a
// database file path (sqlite:///var/lib/plans.db), and postgres:// URLs are
// passed through to the driver as a connection string.
func New(ep *url.URL) (sink.Sink, error) {
	var driver, dsn string

	switch ep.Scheme {
	case "sqlite", "sqlite3":
		driver, dsn = "sqlite3", ep.Host+ep.Path
		if ep.RawQuery != "" {
			dsn += "?" + ep.RawQuery
		}
	case "postgres", "postgresql":
		var u = *ep
		u.Scheme = "postgres"
		driver, dsn = "postgres", u.String()
	default:
		return nil, fmt.Errorf("unsupported SQL sink scheme: %s", ep.Scheme)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s:// sink requires a database", ep.Scheme)
	}

	var db, err = sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening %s database", driver)
	}
	return NewSink(db, driver), nil
}

func (s *Sink) Provider() string { return s.provider }

// Close the *DB.
func (s *Sink) Close() error { return s.DB.Close() }

// Write the Plan within a single transaction.
func (s *Sink) Write(ctx context.Context, plan *placement.Plan) (err error) {
	var txn *sql.Tx
	if txn, err = s.DB.BeginTx(ctx, nil); err != nil {
		return errors.WithMessage(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	for _, stmt := range schemaStatements {
		if _, err = txn.ExecContext(ctx, stmt); err != nil {
			return errors.WithMessage(err, "creating tables")
		}
	}
	for _, table := range []string{"rackplan_shards", "rackplan_hosts", "rackplan_plans"} {
		var column = "plan_id"
		if table == "rackplan_plans" {
			column = "id"
		}
		if _, err = txn.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE "+column+" = $1", plan.ID); err != nil {
			return errors.WithMessagef(err, "clearing %s", table)
		}
	}

	if _, err = txn.ExecContext(ctx,
		"INSERT INTO rackplan_plans (id, shards, replicas, rotate_replicas) VALUES ($1, $2, $3, $4)",
		plan.ID, plan.Shards, plan.Replicas, plan.RotateReplicas); err != nil {
		return errors.WithMessage(err, "inserting plan")
	}

	hostStmt, err := txn.PrepareContext(ctx,
		"INSERT INTO rackplan_hosts (plan_id, name, rack, host_load, owns) VALUES ($1, $2, $3, $4, $5)")
	if err != nil {
		return errors.WithMessage(err, "preparing host insert")
	}
	defer hostStmt.Close()

	for _, h := range plan.Hosts {
		if _, err = hostStmt.ExecContext(ctx, plan.ID, h.Name, h.Rack, h.Load, h.Owns); err != nil {
			return errors.WithMessagef(err, "inserting host %s", h.Name)
		}
	}

	shardStmt, err := txn.PrepareContext(ctx,
		"INSERT INTO rackplan_shards (plan_id, replica, shard_index, host, rack) VALUES ($1, $2, $3, $4, $5)")
	if err != nil {
		return errors.WithMessage(err, "preparing shard insert")
	}
	defer shardStmt.Close()

	for _, rs := range plan.ReplicaSets {
		for _, sh := range rs.Shards {
			if sh.Host == nil {
				return fmt.Errorf("shard (%d, %d) is not assigned", sh.Replica, sh.Index)
			}
			if _, err = shardStmt.ExecContext(ctx, plan.ID, sh.Replica, sh.Index, sh.Host.Name, sh.Host.Rack); err != nil {
				return errors.WithMessagef(err, "inserting shard (%d, %d)", sh.Replica, sh.Index)
			}
		}
	}

	if err = txn.Commit(); err != nil {
		return errors.WithMessage(err, "committing transaction")
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rackplan_plans (
		id              TEXT    PRIMARY KEY NOT NULL,
		shards          INTEGER NOT NULL,
		replicas        INTEGER NOT NULL,
		rotate_replicas BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rackplan_hosts (
		plan_id   TEXT    NOT NULL,
		name      TEXT    NOT NULL,
		rack      TEXT    NOT NULL,
		host_load INTEGER NOT NULL,
		owns      TEXT    NOT NULL,
		PRIMARY KEY (plan_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS rackplan_shards (
		plan_id     TEXT    NOT NULL,
		replica     INTEGER NOT NULL,
		shard_index INTEGER NOT NULL,
		host        TEXT    NOT NULL,
		rack        TEXT    NOT NULL,
		PRIMARY KEY (plan_id, replica, shard_index)
	)`,
}
