package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/topology"
)

func TestShardRanges(t *testing.T) {
	var shards = func(pairs ...int) (out []*placement.Shard) {
		for i := 0; i != len(pairs); i += 2 {
			out = append(out, &placement.Shard{Replica: pairs[i], Index: pairs[i+1]})
		}
		return
	}
	require.Equal(t, "<none>", ShardRanges(nil))
	require.Equal(t, "r0:4", ShardRanges(shards(0, 4)))
	require.Equal(t, "r0:0-2", ShardRanges(shards(0, 0, 0, 1, 0, 2)))
	require.Equal(t, "r1:2-3,r1:0-1", ShardRanges(shards(1, 2, 1, 3, 1, 0, 1, 1)))
	require.Equal(t, "r0:1,r1:2", ShardRanges(shards(0, 1, 1, 2)))
}

func TestPlanTables(t *testing.T) {
	var plan, err = placement.NewPlan(topology.BuildHosts(topology.DefaultTopology()),
		placement.Config{Shards: 1280, Replicas: 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	Plan(&buf, plan, true)
	var out = buf.String()

	for _, expect := range []string{
		"1,280 shards x 3 replicas = 3,840 slots over 38 hosts in 5 racks",
		plan.ID,
		"sjc1-1", "sjc1-8", "33.33%",
		"sjc1-5", "50.00%", "30.00%",
		"h0025", "r0:0-127",
	} {
		require.Contains(t, out, expect)
	}
}
