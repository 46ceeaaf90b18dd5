package profile

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// StartProfiler runs the go pprof tool
// `go tool pprof http://localhost:6060/debug/pprof/profile`
// https://golang.org/pkg/net/http/pprof/
//
// The prometheus registry is served next to it on /metrics, so the
// ledger metrics can be scraped without exposing the api port.
func StartProfiler(expose bool, port int) {
	pre := "localhost"
	if expose {
		pre = ""
	}

	addr := fmt.Sprintf("%s:%d", pre, port)
	log.Infof("Profiling on %s", addr)
	runtime.SetBlockProfileRate(100000)
	log.Println(http.ListenAndServe(addr, Mux()))
}

func Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
