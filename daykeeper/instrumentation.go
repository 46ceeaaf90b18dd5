package daykeeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	currentDay = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stake_daykeeper_day",
		Help: "Current day index",
	})
	rateLag = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stake_daykeeper_rate_lag_days",
		Help: "Finished days the oracle has not published a rate for",
	})
)

var prom sync.Once

func RegisterPrometheus() {
	prom.Do(func() {
		prometheus.MustRegister(currentDay)
		prometheus.MustRegister(rateLag)
	})
}
