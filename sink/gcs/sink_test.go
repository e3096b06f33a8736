package gcs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURLValidation(t *testing.T) {
	for _, tc := range []struct {
		url    string
		expect string
	}{
		{"gs:///fleet.json", "gs:// sink requires a bucket and object (gs:///fleet.json)"},
		{"gs://bucket", "gs:// sink requires a bucket and object (gs://bucket)"},
	} {
		var ep, _ = url.Parse(tc.url)
		var _, err = New(ep)
		require.EqualError(t, err, tc.expect)
	}

	var ep, _ = url.Parse("gs://bucket/fleet.json?Unknown=1")
	var _, err = New(ep)
	require.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	require.Len(t, clientOptions(SinkQueryArgs{}), 1)
	require.Len(t, clientOptions(SinkQueryArgs{CredentialsFile: "/etc/key.json"}), 2)
	require.Len(t, clientOptions(SinkQueryArgs{Endpoint: "http://localhost:4443/storage/v1/"}), 3)
}
