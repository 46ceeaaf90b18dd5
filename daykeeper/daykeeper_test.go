package daykeeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	. "github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	"github.com/stretchr/testify/require"
)

type fakeTail struct {
	tail dayclock.DayIndex
	ok   bool
	err  error
}

func (f *fakeTail) RateTail() (dayclock.DayIndex, bool, error) {
	return f.tail, f.ok, f.err
}

func TestDayKeeper_Poll(t *testing.T) {
	require := require.New(t)
	clock := dayclock.NewManualClock(dayclock.DayIndex(100).Start())
	tail := &fakeTail{}
	k := NewDayKeeper(clock, tail)

	require.NoError(k.Poll())
	st := k.Status()
	require.Equal(int64(100), st.Day)
	require.True(st.RateMissing)
	require.Equal(int64(0), st.Rollovers)

	tail.tail, tail.ok = 99, true
	require.NoError(k.Poll())
	st = k.Status()
	require.False(st.RateMissing)
	require.Equal(int64(0), st.Lag)

	clock.NextDay(3)
	require.NoError(k.Poll())
	st = k.Status()
	require.Equal(int64(103), st.Day)
	require.Equal(int64(1), st.Rollovers)
	require.True(st.RateMissing)
	require.Equal(int64(3), st.Lag)

	// A rate for today is ahead of schedule, not missing
	tail.tail = 103
	require.NoError(k.Poll())
	require.False(k.Status().RateMissing)

	tail.err = errors.New("db down")
	require.Error(k.Poll())
}

func TestDayKeeper_Run(t *testing.T) {
	clock := dayclock.NewManualClock(dayclock.DayIndex(7).Start())
	k := NewDayKeeper(clock, &fakeTail{tail: 6, ok: true})
	k.PollInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return k.Status().Day == 7 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
