package sqldb

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.gazette.dev/rackplan/placement"
)

func TestWritePlanToSQLite(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "plans.db")
	var s, err = New(&url.URL{Scheme: "sqlite", Path: path})
	require.NoError(t, err)
	require.Equal(t, "sqlite3", s.Provider())

	var db = s.(*Sink).DB
	defer db.Close()

	var plan = buildPlan(t)
	// Writes are repeatable.
	require.NoError(t, s.Write(context.Background(), plan))
	require.NoError(t, s.Write(context.Background(), plan))

	var shards, replicas int
	require.NoError(t, db.QueryRow("SELECT shards, replicas FROM rackplan_plans "+
		"WHERE id = $1", plan.ID).Scan(&shards, &replicas))
	require.Equal(t, []int{6, 2}, []int{shards, replicas})

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM rackplan_shards WHERE plan_id = $1", plan.ID).Scan(&count))
	require.Equal(t, 12, count)

	// Sum of loads is replicas * shards.
	require.NoError(t, db.QueryRow("SELECT SUM(host_load) FROM rackplan_hosts WHERE plan_id = $1", plan.ID).Scan(&count))
	require.Equal(t, 12, count)

	// Replicas of a shard are in distinct racks.
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM (
		SELECT shard_index FROM rackplan_shards WHERE plan_id = $1
		GROUP BY shard_index HAVING COUNT(DISTINCT rack) != 2)`, plan.ID).Scan(&count))
	require.Equal(t, 0, count)

	var host, rack string
	require.NoError(t, db.QueryRow("SELECT host, rack FROM rackplan_shards "+
		"WHERE plan_id = $1 AND replica = 0 AND shard_index = 0", plan.ID).Scan(&host, &rack))
	require.Equal(t, "B", rack)
	require.Equal(t, "h0002", host)
}

func TestUnassignedShardRollsBack(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "plans.db")
	var s, err = New(&url.URL{Scheme: "sqlite3", Path: path})
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	var db = s.(*Sink).DB
	var ctx = context.Background()

	// Write a first plan, which creates tables.
	var prior = buildPlan(t)
	require.NoError(t, s.Write(ctx, prior))

	var plan = buildPlanOf(t, placement.Config{Shards: 4, Replicas: 2})
	require.NotEqual(t, prior.ID, plan.ID)
	plan.ReplicaSets[1].Shards[3].Host = nil
	require.EqualError(t, s.Write(ctx, plan), "shard (1, 3) is not assigned")

	// No rows of the failed plan were written.
	require.Equal(t, []int{0, 0, 0}, planRowCounts(t, db, plan.ID))
	// The prior plan is untouched.
	require.Equal(t, []int{1, 4, 12}, planRowCounts(t, db, prior.ID))

	// A failed re-write of the prior plan leaves its rows in place.
	prior.ReplicaSets[0].Shards[5].Host = nil
	require.EqualError(t, s.Write(ctx, prior), "shard (0, 5) is not assigned")
	require.Equal(t, []int{1, 4, 12}, planRowCounts(t, db, prior.ID))
}

func planRowCounts(t *testing.T, db *sql.DB, id string) []int {
	var out []int
	for _, q := range []string{
		"SELECT COUNT(*) FROM rackplan_plans WHERE id = $1",
		"SELECT COUNT(*) FROM rackplan_hosts WHERE plan_id = $1",
		"SELECT COUNT(*) FROM rackplan_shards WHERE plan_id = $1",
	} {
		var n int
		require.NoError(t, db.QueryRow(q, id).Scan(&n))
		out = append(out, n)
	}
	return out
}

func TestURLValidation(t *testing.T) {
	var _, err = New(&url.URL{Scheme: "mysql", Host: "db"})
	require.EqualError(t, err, "unsupported SQL sink scheme: mysql")

	_, err = New(&url.URL{Scheme: "sqlite"})
	require.EqualError(t, err, "sqlite:// sink requires a database")

	// Opening a postgres database is lazy; no connection is made.
	s, err := New(&url.URL{Scheme: "postgresql", Host: "localhost:5432", Path: "/plans", RawQuery: "sslmode=disable"})
	require.NoError(t, err)
	require.Equal(t, "postgres", s.Provider())
	require.NoError(t, s.Close())
}

func buildPlan(t *testing.T) *placement.Plan {
	return buildPlanOf(t, placement.Config{Shards: 6, Replicas: 2})
}

func buildPlanOf(t *testing.T, cfg placement.Config) *placement.Plan {
	var plan, err = placement.NewPlan([]*placement.Host{
		placement.NewHost("h0000", "A"),
		placement.NewHost("h0001", "A"),
		placement.NewHost("h0002", "B"),
		placement.NewHost("h0003", "B"),
	}, cfg)
	require.NoError(t, err)
	return plan
}
