package topology

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.gazette.dev/rackplan/placement"
)

func TestBuildHostsNamesAndOrder(t *testing.T) {
	var hosts = BuildHosts(Topology{{"A", 2}, {"empty", 0}, {"neg", -3}, {"B", 1}})

	require.Len(t, hosts, 3)
	require.Equal(t, []string{"h0000", "h0001", "h0002"}, []string{hosts[0].Name, hosts[1].Name, hosts[2].Name})
	require.Equal(t, []string{"A", "A", "B"}, []string{hosts[0].Rack, hosts[1].Rack, hosts[2].Rack})

	for _, h := range hosts {
		require.Equal(t, 0, h.Load)
		require.Equal(t, "0.00%", h.Owns)
		require.Empty(t, h.Shards)
	}
}

func TestHostNameKeepsLastFourDigits(t *testing.T) {
	require.Equal(t, "h0007", HostName(7))
	require.Equal(t, "h9999", HostName(9999))
	require.Equal(t, "h0000", HostName(10000))
	require.Equal(t, "h2345", HostName(12345))
}

func TestValidationCases(t *testing.T) {
	require.NoError(t, Topology{{"sjc1-1", 1}, {"sjc1-2", 0}}.Validate())
	require.NoError(t, Topology{{"A", 6000}, {"B", 4000}}.Validate())

	for _, tc := range []struct {
		topo   Topology
		expect string
	}{
		{Topology{}, "expected at least one host"},
		{Topology{{"A", 0}}, "expected at least one host"},
		{Topology{{"A", 6000}, {"B", 4001}}, "expected at most 10000 hosts (got 10001)"},
		{Topology{{"A", 1}, {"A", 2}}, "Racks[1]: duplicate rack (A)"},
		{Topology{{"A", -1}}, "Racks[0]: invalid Hosts (-1; expected Hosts >= 0)"},
		{Topology{{"A", 1}, {"B", 1 << 62}, {"C", 1 << 62}}, "Racks[1]: invalid Hosts (4611686018427387904; expected Hosts <= 10000)"},
		{Topology{{"a#b", 1}}, "Racks[0].Name: not a valid token (a#b)"},
		{Topology{{"", 1}}, "Racks[0].Name: invalid length (0; expected 1 <= length <= 128)"},
	} {
		var err = tc.topo.Validate()
		require.EqualError(t, err, "invalid topology: "+tc.expect)
		require.True(t, placement.IsInvalidTopology(err), tc.expect)
	}
}

func TestParseRackFlags(t *testing.T) {
	var topo, err = ParseRackFlags([]string{"sjc1-8=8", " sjc1-1 = 20"})
	require.NoError(t, err)
	require.Equal(t, Topology{{"sjc1-8", 8}, {"sjc1-1", 20}}, topo)
	require.Equal(t, "sjc1-8=8,sjc1-1=20", topo.String())

	_, err = ParseRackFlag("sjc1-8")
	require.EqualError(t, err, `expected rack flag of form name=count ("sjc1-8")`)
	_, err = ParseRackFlag("sjc1-8=eight")
	require.Error(t, err)
	require.Contains(t, err.Error(), `parsing host count of rack "sjc1-8"`)
}

func TestDecodeRetainsDocumentOrder(t *testing.T) {
	var topo, err = Decode(strings.NewReader(`
zeta: 2
alpha: 5
100: 1
mid: 0
`))
	require.NoError(t, err)
	require.Equal(t, Topology{{"zeta", 2}, {"alpha", 5}, {"100", 1}, {"mid", 0}}, topo)

	_, err = Decode(strings.NewReader("zeta: lots\n"))
	require.EqualError(t, err, `rack "zeta": expected an integer host count (got lots)`)

	_, err = Decode(strings.NewReader("[1, 2"))
	require.Error(t, err)

	topo, err = Decode(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, topo)
}

func TestLoadFromFilesystem(t *testing.T) {
	var fs = afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/rackplan/fleet.yaml", []byte("b: 1\na: 2\n"), 0644))

	var topo, err = Load(fs, "/etc/rackplan/fleet.yaml")
	require.NoError(t, err)
	require.Equal(t, Topology{{"b", 1}, {"a", 2}}, topo)

	_, err = Load(fs, "/missing.yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "opening topology")
}

func TestDefaultTopologyPlacement(t *testing.T) {
	var topo = DefaultTopology()
	require.NoError(t, topo.Validate())
	require.Equal(t, 38, topo.HostCount())

	var plan, err = placement.NewPlan(BuildHosts(topo), placement.Config{Shards: 128, Replicas: 3})
	require.NoError(t, err)
	require.NoError(t, plan.Validate())
	require.Equal(t, "33.33%", plan.RacksSummary["sjc1-1"].Owns)
}
