// Package rates keeps the daily reward rate table. Rates form a contiguous
// chain of days; new days may only extend the tail, and once a settlement has
// consumed a day it is frozen.
package rates

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/jinzhu/gorm"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrNoRateSet          = errors.New("no rate set for day")
	ErrRateOutOfBounds    = errors.New("rate out of bounds")
	ErrLaterRateExists    = errors.New("only the latest rate can be set again")
	ErrRateAlreadyClaimed = errors.New("rate already claimed")
)

// DefaultUpperBound is the exclusive ceiling on a daily rate
const DefaultUpperBound uint64 = 1000000

const watermarkSetting = "rates.last_claimed_day"

// Entry is the rate for one day, in payout minor units per staked unit per
// full day.
type Entry struct {
	Day       int64     `gorm:"primary_key;auto_increment:false" json:"day"`
	Rate      uint64    `json:"rate"`
	Claimed   bool      `json:"claimed"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Entry) TableName() string { return "rate_entries" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{}, &database.Setting{}).Error
}

type Table struct {
	UpperBound uint64
	db         *gorm.DB
}

func New(db *gorm.DB, upperBound uint64) *Table {
	if upperBound == 0 {
		upperBound = DefaultUpperBound
	}
	return &Table{UpperBound: upperBound, db: db}
}

func (t *Table) WithDB(db *gorm.DB) *Table {
	return &Table{UpperBound: t.UpperBound, db: db}
}

// Get returns the rate for day
func (t *Table) Get(day dayclock.DayIndex) (uint64, error) {
	e, err := t.entry(day)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, noRate(day)
	}
	return e.Rate, nil
}

// Tail returns the greatest day with a rate. The bool is false for an empty
// table.
func (t *Table) Tail() (dayclock.DayIndex, bool, error) {
	var e Entry
	err := t.db.Order("day desc").First(&e).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, pkgerrors.Wrap(err, "read tail rate")
	}
	return dayclock.DayIndex(e.Day), true, nil
}

// Watermark is the greatest day ever consumed by a settlement
func (t *Table) Watermark() (dayclock.DayIndex, bool, error) {
	v, ok, err := database.GetSetting(t.db, watermarkSetting)
	if err != nil || !ok {
		return 0, false, err
	}
	day, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt watermark %q: %s", v, err.Error())
	}
	return dayclock.DayIndex(day), true, nil
}

// Set publishes the rate for day. It either overwrites the tail day or
// appends the day right after it. The very first rate may be any day up to
// today.
func (t *Table) Set(day dayclock.DayIndex, rate uint64, today dayclock.DayIndex) error {
	if err := t.checkMutable(day, rate); err != nil {
		return err
	}

	existing, err := t.entry(day)
	if err != nil {
		return err
	}
	tail, hasTail, err := t.Tail()
	if err != nil {
		return err
	}

	if existing != nil {
		if day != tail {
			return ErrLaterRateExists
		}
		existing.Rate = rate
		return pkgerrors.Wrap(t.db.Save(existing).Error, "save rate")
	}

	if !hasTail {
		if day > today {
			return noRate(day - 1)
		}
	} else if day-1 != tail {
		// The chain is contiguous, so a new day must sit right on the tail
		return noRate(day - 1)
	}

	e := Entry{Day: int64(day), Rate: rate}
	return pkgerrors.Wrap(t.db.Create(&e).Error, "create rate")
}

// Change corrects the rate of any day that has not been claimed yet, even if
// later days exist.
func (t *Table) Change(day dayclock.DayIndex, rate uint64) error {
	if err := t.checkMutable(day, rate); err != nil {
		return err
	}
	existing, err := t.entry(day)
	if err != nil {
		return err
	}
	if existing == nil {
		return noRate(day)
	}
	existing.Rate = rate
	return pkgerrors.Wrap(t.db.Save(existing).Error, "save rate")
}

// Range returns the rates of [from, to) in day order. Every day must be set.
func (t *Table) Range(from, to dayclock.DayIndex) ([]uint64, error) {
	if to <= from {
		return nil, nil
	}
	var entries []Entry
	err := t.db.Where("day >= ? AND day < ?", int64(from), int64(to)).Order("day asc").Find(&entries).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read rates")
	}

	out := make([]uint64, 0, int(to-from))
	for i, e := range entries {
		if dayclock.DayIndex(e.Day) != from+dayclock.DayIndex(i) {
			return nil, noRate(from + dayclock.DayIndex(i))
		}
		out = append(out, e.Rate)
	}
	if missing := from + dayclock.DayIndex(len(out)); missing < to {
		return nil, noRate(missing)
	}
	return out, nil
}

// MarkClaimedThrough freezes every day in [from, through] and moves the
// watermark up to through. Calling it again is harmless.
func (t *Table) MarkClaimedThrough(from, through dayclock.DayIndex) error {
	if through < from {
		return nil
	}
	err := t.db.Model(&Entry{}).
		Where("day >= ? AND day <= ? AND claimed = ?", int64(from), int64(through), false).
		UpdateColumn("claimed", true).Error
	if err != nil {
		return pkgerrors.Wrap(err, "mark claimed")
	}

	wm, ok, err := t.Watermark()
	if err != nil {
		return err
	}
	if ok && wm >= through {
		return nil
	}
	return database.PutSetting(t.db, watermarkSetting, strconv.FormatInt(int64(through), 10))
}

// Entries lists the table, newest first
func (t *Table) Entries(limit int) ([]Entry, error) {
	var entries []Entry
	err := t.db.Order("day desc").Limit(limit).Find(&entries).Error
	return entries, pkgerrors.Wrap(err, "list rates")
}

func (t *Table) checkMutable(day dayclock.DayIndex, rate uint64) error {
	if rate == 0 || rate >= t.UpperBound {
		return fmt.Errorf("%w: must be >0 and <%d", ErrRateOutOfBounds, t.UpperBound)
	}

	wm, ok, err := t.Watermark()
	if err != nil {
		return err
	}
	if ok && day <= wm {
		return ErrRateAlreadyClaimed
	}
	e, err := t.entry(day)
	if err != nil {
		return err
	}
	if e != nil && e.Claimed {
		return ErrRateAlreadyClaimed
	}
	return nil
}

func (t *Table) entry(day dayclock.DayIndex) (*Entry, error) {
	var e Entry
	err := t.db.Where("day = ?", int64(day)).First(&e).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read rate")
	}
	return &e, nil
}

func noRate(day dayclock.DayIndex) error {
	return fmt.Errorf("%w: day %d", ErrNoRateSet, day)
}
