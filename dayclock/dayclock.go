package dayclock

import (
	"time"

	"go.uber.org/atomic"
)

// SecondsPerDay is the length of a rate day. There is no leap second or
// timezone handling, a day is always a fixed window of unix time.
const SecondsPerDay int64 = 86400

// DayIndex counts whole days since the unix epoch.
type DayIndex int64

// DayOf returns the day a unix timestamp falls in.
func DayOf(ts int64) DayIndex {
	return DayIndex(ts / SecondsPerDay)
}

// SecondsIntoDay returns the offset of ts within its day, in [0, 86400).
func SecondsIntoDay(ts int64) int64 {
	return ts % SecondsPerDay
}

// Remaining is the number of seconds left in the day of ts. A timestamp
// exactly on a boundary has the whole day remaining.
func Remaining(ts int64) int64 {
	return SecondsPerDay - SecondsIntoDay(ts)
}

// Start is the first second of the day.
func (d DayIndex) Start() int64 {
	return int64(d) * SecondsPerDay
}

// End is the boundary timestamp closing the day, which is also the start of
// the next one.
func (d DayIndex) End() int64 {
	return (int64(d) + 1) * SecondsPerDay
}

// Clock supplies the ledger with the current unix time.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// ManualClock is a clock that only moves when told to. It is safe to share
// between goroutines.
type ManualClock struct {
	now *atomic.Int64
}

func NewManualClock(ts int64) *ManualClock {
	return &ManualClock{now: atomic.NewInt64(ts)}
}

func (c *ManualClock) Now() int64 {
	return c.now.Load()
}

func (c *ManualClock) Set(ts int64) {
	c.now.Store(ts)
}

// Advance moves the clock forward by secs and returns the new time.
func (c *ManualClock) Advance(secs int64) int64 {
	return c.now.Add(secs)
}

// NextDay jumps to the first second of the day n days after the current one.
func (c *ManualClock) NextDay(n int) int64 {
	day := DayOf(c.Now()) + DayIndex(n)
	c.Set(day.Start())
	return day.Start()
}
