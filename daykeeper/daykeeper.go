package daykeeper

import (
	"context"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	PollInterval = time.Second * 10
)

// TailSource reports the last day the oracle published a rate for
type TailSource interface {
	RateTail() (dayclock.DayIndex, bool, error)
}

// DayKeeper watches the day boundaries. Rewards for a day can only be
// settled once the oracle has published its rate, so the keeper keeps track
// of how far behind the rate table is and complains when a finished day
// still has no rate. It never changes ledger state.
type DayKeeper struct {
	Clock        dayclock.Clock
	Rates        TailSource
	PollInterval time.Duration

	day       atomic.Int64
	tail      atomic.Int64
	hasTail   atomic.Bool
	rollovers atomic.Int64
	warned    int64

	logE *log.Entry
}

type DayStatus struct {
	Day         int64 `json:"day"`
	TailDay     int64 `json:"tailday"`
	HasTail     bool  `json:"hastail"`
	Lag         int64 `json:"lag"`
	RateMissing bool  `json:"ratemissing"`
	Rollovers   int64 `json:"rollovers"`
}

func NewDayKeeper(clock dayclock.Clock, rates TailSource) *DayKeeper {
	k := new(DayKeeper)
	k.Clock = clock
	k.Rates = rates
	k.PollInterval = PollInterval
	k.day.Store(-1)
	k.warned = -1
	k.logE = log.WithField("mod", "daykeep")
	return k
}

func (k *DayKeeper) Status() DayStatus {
	st := DayStatus{
		Day:       k.day.Load(),
		TailDay:   k.tail.Load(),
		HasTail:   k.hasTail.Load(),
		Rollovers: k.rollovers.Load(),
	}
	// Yesterday is the latest day that can have a rate to settle against
	want := st.Day - 1
	switch {
	case !st.HasTail:
		st.RateMissing = true
	case st.TailDay < want:
		st.RateMissing = true
		st.Lag = want - st.TailDay
	}
	return st
}

func (k *DayKeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(k.PollInterval)
	defer ticker.Stop()
	for {
		if err := k.Poll(); err != nil {
			k.logE.WithError(err).Error("failed to read rate tail")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll takes one look at the clock and the rate table
func (k *DayKeeper) Poll() error {
	today := int64(dayclock.DayOf(k.Clock.Now()))
	prev := k.day.Swap(today)
	if prev != today {
		if prev >= 0 {
			k.rollovers.Inc()
			k.logE.WithFields(log.Fields{"day": today, "prev": prev}).Info("new day")
		}
		currentDay.Set(float64(today))
	}

	tail, ok, err := k.Rates.RateTail()
	if err != nil {
		return err
	}
	k.tail.Store(int64(tail))
	k.hasTail.Store(ok)

	st := k.Status()
	rateLag.Set(float64(st.Lag))
	if st.RateMissing && k.warned != today {
		// Once per day is enough
		k.warned = today
		k.logE.WithFields(log.Fields{"day": today, "tail": st.TailDay, "lag": st.Lag}).Warn("oracle rate missing for a finished day")
	}
	return nil
}
