package mainboilerplate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"
)

type noopCmd struct {
	Value string `long:"value"`
}

func (noopCmd) Execute([]string) error { return nil }

func TestCommandRegistryBuildsNestedCommands(t *testing.T) {
	var cr = NewCommandRegistry()
	cr.AddCommand("plans", "show", "Show a plan", "", &noopCmd{})
	cr.AddCommand("", "plans", "Plan commands", "", &struct{}{})
	cr.AddCommand("plans.show", "hosts", "Show plan hosts", "", &noopCmd{})

	var parser = flags.NewParser(nil, flags.None)
	require.NoError(t, cr.AddCommands("", parser.Command, true))

	var plans = parser.Find("plans")
	require.NotNil(t, plans)
	require.NotNil(t, plans.Find("show"))
	require.NotNil(t, plans.Find("show").Find("hosts"))

	// Without recursion, only root commands are added.
	parser = flags.NewParser(nil, flags.None)
	require.NoError(t, cr.AddCommands("", parser.Command, false))
	require.NotNil(t, parser.Find("plans"))
	require.Nil(t, parser.Find("plans").Find("show"))
}

func TestParseIniFileSearchesDirsInOrder(t *testing.T) {
	var first, second = t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "test.ini"),
		[]byte("[Application Options]\nvalue = from-second\n"), 0644))

	var cfg noopCmd
	var parser = flags.NewParser(&cfg, flags.None)

	var path, err = ParseIniFile(flags.NewIniParser(parser), []string{first, second}, "test.ini")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(second, "test.ini"), path)
	require.Equal(t, "from-second", cfg.Value)

	path, err = ParseIniFile(flags.NewIniParser(parser), []string{first}, "test.ini")
	require.NoError(t, err)
	require.Equal(t, "", path)
}

func TestMustPanicsOnError(t *testing.T) {
	require.NotPanics(t, func() { Must(nil, "not reached") })
	require.Panics(t, func() { Must(errors.New("whoops"), "failed", "key", "value") })
}

func TestDiagnosticsHandlers(t *testing.T) {
	var mux = http.NewServeMux()
	var recoverFn = InitDiagnosticsAndRecover(mux, DiagnosticsConfig{MetricsPath: "/debug/metrics"})
	require.NotNil(t, recoverFn)

	for _, path := range []string{"/debug/ready", "/debug/metrics"} {
		var w = httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}
