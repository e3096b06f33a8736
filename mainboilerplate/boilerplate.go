// Package mainboilerplate contains shared boilerplate for rackplan programs.
// The idea is to provide a selection of narrowly scoped methods so callers
// do not have to buy-in to an all-or-nothing approach.
package mainboilerplate

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// Version of the program, set at link time.
	Version = "development"
	// BuildDate of the program, set at link time.
	BuildDate = "unknown"
)

// DiagnosticsConfig configures pull-based application metrics, debugging and diagnostics.
type DiagnosticsConfig struct {
	MetricsPath string `long:"metrics-path" env:"METRICS_PATH" default:"/debug/metrics" description:"Path at which Prometheus metrics are served"`
}

// InitDiagnosticsAndRecover enables serving of metrics and debugging services
// registered on |mux|. It also returns a closure which should be deferred,
// which recovers a panic and attempts to log a K8s termination message.
func InitDiagnosticsAndRecover(mux *http.ServeMux, cfg DiagnosticsConfig) func() {
	// Serve a liveness check at /debug/ready.
	mux.HandleFunc("/debug/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Serve Prometheus metrics.
	mux.Handle(cfg.MetricsPath, promhttp.Handler())

	return func() {
		if r := recover(); r != nil {
			// Make a best effort attempt to write a termination message.
			// Bug: https://github.com/kubernetes/kubernetes/issues/31839
			if f, err := os.OpenFile(k8sTerminationLog, os.O_WRONLY, 0777); err == nil {
				fmt.Fprintf(f, "%+v", r)
				f.Close()
			}
			panic(r)
		}
	}
}

// Must panics if |err| is non-nil, supplying |msg| and |extra| as
// formatter and fields of the generated panic.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(f).Panic(msg)
}

const (
	// k8sTerminationLog is the location to write a termination message for
	// Kubernetes to retrieve.
	//
	// Link: https://kubernetes.io/docs/tasks/debug-application-cluster/determine-reason-pod-failure/#setting-the-termination-log-file
	k8sTerminationLog = "/dev/termination-log"
)
