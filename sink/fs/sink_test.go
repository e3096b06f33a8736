package fs

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.gazette.dev/rackplan/placement"
	"go.gazette.dev/rackplan/planfmt"
	"go.gazette.dev/rackplan/sink"
)

func TestWriteAndReplacePlan(t *testing.T) {
	FS = afero.NewMemMapFs()
	defer func() { FS = afero.NewOsFs() }()

	sink.RegisterProviders(map[string]sink.Constructor{"file": New})

	var s, err = sink.Open("file:///var/plans/fleet.yaml.gz?Parents=true&Mode=0600")
	require.NoError(t, err)
	require.Equal(t, "fs", s.Provider())

	for _, shards := range []int{4, 8} {
		var plan, err = placement.NewPlan([]*placement.Host{
			placement.NewHost("h0000", "A"),
			placement.NewHost("h0001", "B"),
		}, placement.Config{Shards: shards, Replicas: 2})
		require.NoError(t, err)
		require.NoError(t, s.Write(context.Background(), plan))

		b, err := afero.ReadFile(FS, "/var/plans/fleet.yaml.gz")
		require.NoError(t, err)
		out, err := planfmt.DecodePath(bytes.NewReader(b), "fleet.yaml.gz")
		require.NoError(t, err)
		require.Equal(t, plan.ID, out.ID)
		require.Equal(t, shards, out.Shards)
	}

	info, err := FS.Stat("/var/plans/fleet.yaml.gz")
	require.NoError(t, err)
	require.Equal(t, "-rw-------", info.Mode().String())

	// Temporary files were cleaned up.
	entries, err := afero.ReadDir(FS, "/var/plans")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestMissingDirectory(t *testing.T) {
	var s, err = newStore(afero.NewMemMapFs(), &url.URL{Scheme: "file", Path: "/missing/plan.json"})
	require.NoError(t, err)

	err = s.Put(context.Background(), "/missing/plan.json", bytes.NewReader([]byte("{}")), 2, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), invalidSinkDirectory)
}

func TestQueryArgErrors(t *testing.T) {
	var _, err = New(&url.URL{Scheme: "file", Path: "/plan.json", RawQuery: "Mode=rw"})
	require.EqualError(t, err, `parsing file mode "rw": expected integer`)

	_, err = New(&url.URL{Scheme: "file", Path: "/plan.json", RawQuery: "Bogus=1"})
	require.Error(t, err)

	_, err = New(&url.URL{Scheme: "file"})
	require.EqualError(t, err, "file:// sink requires a path")
}
