package accounting

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stake_ledger_events_total",
		Help: "Committed ledger events by kind",
	}, []string{"kind"})
	claimedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stake_ledger_claimed_total",
		Help: "Payout minor units paid out, approximate",
	})
	settlementsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stake_ledger_settlements_skipped_total",
		Help: "Forced stake movements that forfeited a reward",
	}, []string{"kind"})
)

var prom sync.Once

func RegisterPrometheus() {
	prom.Do(func() {
		prometheus.MustRegister(eventsTotal)
		prometheus.MustRegister(claimedTotal)
		prometheus.MustRegister(settlementsSkipped)
	})
}
