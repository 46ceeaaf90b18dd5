package rates_test

import (
	"testing"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	. "github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/stretchr/testify/require"
)

const today dayclock.DayIndex = 19000

func table(t *testing.T) *Table {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { db.Close() })
	return New(db, DefaultUpperBound)
}

func TestTable_Bounds(t *testing.T) {
	require := require.New(t)
	tbl := table(t)

	require.ErrorIs(tbl.Set(today, 0, today), ErrRateOutOfBounds)
	require.ErrorIs(tbl.Set(today, 1e12, today), ErrRateOutOfBounds)
	require.ErrorIs(tbl.Set(today, DefaultUpperBound, today), ErrRateOutOfBounds)
	require.NoError(tbl.Set(today, DefaultUpperBound-1, today))

	require.ErrorIs(tbl.Change(today, 0), ErrRateOutOfBounds)
}

func TestTable_Set(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		require := require.New(t)
		tbl := table(t)
		require.NoError(tbl.Set(today, 10, today))
		r, err := tbl.Get(today)
		require.NoError(err)
		require.Equal(uint64(10), r)
	})

	t.Run("first rate in the past", func(t *testing.T) {
		tbl := table(t)
		require.NoError(t, tbl.Set(today-5, 10, today))
	})

	t.Run("yesterday not set", func(t *testing.T) {
		require := require.New(t)
		tbl := table(t)
		require.ErrorIs(tbl.Set(today+1, 10, today), ErrNoRateSet)

		require.NoError(tbl.Set(today, 10, today))
		require.ErrorIs(tbl.Set(today+2, 10, today), ErrNoRateSet)
		require.ErrorIs(tbl.Set(today-2, 10, today), ErrNoRateSet)
	})

	t.Run("overwrite tail", func(t *testing.T) {
		require := require.New(t)
		tbl := table(t)
		require.NoError(tbl.Set(today, 10, today))
		require.NoError(tbl.Set(today, 20, today))
		r, _ := tbl.Get(today)
		require.Equal(uint64(20), r)
	})

	t.Run("later rate exists", func(t *testing.T) {
		require := require.New(t)
		tbl := table(t)
		require.NoError(tbl.Set(today, 10, today))
		require.NoError(tbl.Set(today+1, 10, today))
		require.ErrorIs(tbl.Set(today, 10, today), ErrLaterRateExists)

		tail, ok, err := tbl.Tail()
		require.NoError(err)
		require.True(ok)
		require.Equal(today+1, tail)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := table(t).Get(today)
		require.ErrorIs(t, err, ErrNoRateSet)
	})
}

func TestTable_Change(t *testing.T) {
	require := require.New(t)
	tbl := table(t)

	require.ErrorIs(tbl.Change(today, 10), ErrNoRateSet)

	for i := 0; i < 3; i++ {
		require.NoError(tbl.Set(today+dayclock.DayIndex(i), 10, today))
	}
	// correcting history is allowed as long as nothing was claimed
	require.NoError(tbl.Change(today, 30))
	r, _ := tbl.Get(today)
	require.Equal(uint64(30), r)
}

func TestTable_Claimed(t *testing.T) {
	require := require.New(t)
	tbl := table(t)

	for i := 0; i < 4; i++ {
		require.NoError(tbl.Set(today+dayclock.DayIndex(i), 10, today))
	}

	_, ok, err := tbl.Watermark()
	require.NoError(err)
	require.False(ok)

	require.NoError(tbl.MarkClaimedThrough(today, today+1))
	require.NoError(tbl.MarkClaimedThrough(today, today+1))
	wm, ok, err := tbl.Watermark()
	require.NoError(err)
	require.True(ok)
	require.Equal(today+1, wm)

	require.ErrorIs(tbl.Change(today, 20), ErrRateAlreadyClaimed)
	require.ErrorIs(tbl.Change(today+1, 20), ErrRateAlreadyClaimed)
	require.NoError(tbl.Change(today+2, 20))

	// an older range never lowers the watermark
	require.NoError(tbl.MarkClaimedThrough(today, today))
	wm, _, _ = tbl.Watermark()
	require.Equal(today+1, wm)

	entries, err := tbl.Entries(10)
	require.NoError(err)
	require.Len(entries, 4)
	require.Equal(int64(today+3), entries[0].Day)
	require.False(entries[0].Claimed)
	require.True(entries[3].Claimed)
}

func TestTable_Range(t *testing.T) {
	require := require.New(t)
	tbl := table(t)

	require.NoError(tbl.Set(today, 10, today))
	require.NoError(tbl.Set(today+1, 20, today))

	rs, err := tbl.Range(today, today+2)
	require.NoError(err)
	require.Equal([]uint64{10, 20}, rs)

	rs, err = tbl.Range(today, today)
	require.NoError(err)
	require.Empty(rs)

	_, err = tbl.Range(today, today+3)
	require.ErrorIs(err, ErrNoRateSet)
	_, err = tbl.Range(today-1, today+1)
	require.ErrorIs(err, ErrNoRateSet)
}
