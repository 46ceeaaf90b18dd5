package web

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stake_api_requests_total",
		Help: "Api calls by method and result kind",
	}, []string{"method", "kind"})
)

var prom sync.Once

func RegisterPrometheus() {
	prom.Do(func() {
		prometheus.MustRegister(apiRequests)
	})
}
