package accounting

import (
	"math/big"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// MaxStakeBits bounds a single account's stake, leaving room for the
// stake-seconds and rate products below 256 bits.
const MaxStakeBits = 232

// MinerRecord is one staker's position.
type MinerRecord struct {
	Account        string          `gorm:"primary_key" json:"account"`
	LastSettledDay int64           `json:"lastsettledday"`
	StakedAmount   database.Amount `gorm:"type:varchar(80)" json:"staked"`
	// StartWeight is the stake-seconds held during LastSettledDay
	StartWeight database.Amount `gorm:"type:varchar(80)" json:"startweight"`
	UpdatedAt   time.Time       `json:"-"`
}

func (s *state) record(account common.Address) (*MinerRecord, error) {
	var rec MinerRecord
	err := s.db.Where("account = ?", account.Hex()).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return &MinerRecord{Account: account.Hex()}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read miner record")
	}
	return &rec, nil
}

func (s *state) saveRecord(rec *MinerRecord) error {
	return errors.Wrap(s.db.Save(rec).Error, "save miner record")
}

func (r *MinerRecord) address() common.Address {
	return common.HexToAddress(r.Account)
}

// accrual is what a settlement at some instant would pay, and which days it
// consumes: [From, To).
type accrual struct {
	Reward   *uint256.Int
	From, To dayclock.DayIndex
}

// pending computes the reward owed to rec up to the start of the current
// day. The current day never contributes; it is still open.
func (s *state) pending(rec *MinerRecord) (*accrual, error) {
	start := dayclock.DayIndex(rec.LastSettledDay)
	acc := &accrual{Reward: new(uint256.Int), From: start, To: start}

	stake := rec.StakedAmount.Int()
	if stake.IsZero() {
		return acc, nil
	}
	end := s.today()
	if end <= start {
		return acc, nil
	}

	rs, err := s.rates.Range(start, end)
	if err != nil {
		return nil, err
	}

	num := new(big.Int).Mul(new(big.Int).SetUint64(rs[0]), rec.StartWeight.Int().ToBig())
	fullDay := new(big.Int).Mul(stake.ToBig(), big.NewInt(dayclock.SecondsPerDay))
	tmp := new(big.Int)
	for _, r := range rs[1:] {
		num.Add(num, tmp.Mul(fullDay, tmp.SetUint64(r)))
	}
	num.Quo(num, big.NewInt(dayclock.SecondsPerDay))

	reward, overflow := uint256.FromBig(num)
	if overflow {
		return nil, ErrRewardOverflow
	}
	acc.Reward = reward
	acc.To = end
	return acc, nil
}

// advance moves the record's settlement point to now without paying
// anything. Moving to a new day restarts the weight from the current stake.
func (r *MinerRecord) advance(now int64) {
	today := int64(dayclock.DayOf(now))
	if today == r.LastSettledDay {
		return
	}
	r.LastSettledDay = today
	w := new(uint256.Int).Mul(r.StakedAmount.Int(), uint256.NewInt(uint64(dayclock.Remaining(now))))
	r.StartWeight = database.NewAmount(w)
}

// settle brings rec up to now, paying the accrued reward out of the reserve.
// It returns the amount paid. Consumed days are frozen only when something
// was paid.
func (s *state) settle(rec *MinerRecord) (*uint256.Int, error) {
	acc, err := s.pending(rec)
	if err != nil {
		return nil, err
	}

	if !acc.Reward.IsZero() {
		g, err := s.gateway()
		if err != nil {
			return nil, err
		}
		if err := g.Pull(acc.Reward, rec.address()); err != nil {
			return nil, err
		}
		if err := s.rates.MarkClaimedThrough(acc.From, acc.To-1); err != nil {
			return nil, err
		}
		err = s.emit(&Event{
			Kind:    EventClaim,
			Account: rec.Account,
			Amount:  acc.Reward.Dec(),
			Day:     int64(acc.To - 1),
		})
		if err != nil {
			return nil, err
		}
	}

	rec.advance(s.now)
	return acc.Reward, nil
}

// settleOrSkip settles rec. In force mode a missing rate or an empty reserve
// is ignored: the record moves to now and the reward is forfeited.
func (s *state) settleOrSkip(rec *MinerRecord, force bool) error {
	_, err := s.settle(rec)
	if err == nil {
		return nil
	}
	if !force || !skippable(err) {
		return err
	}
	acctLog.WithError(err).WithField("account", rec.Account).Warn("forced past settlement")
	settlementsSkipped.WithLabelValues(Kind(err)).Inc()
	rec.advance(s.now)
	return nil
}

// weigh adds (or removes) amount's stake-seconds for the rest of today
func (r *MinerRecord) weigh(amount *uint256.Int, now int64, remove bool) {
	delta := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(dayclock.Remaining(now))))
	w := r.StartWeight.Int()
	if remove {
		if w.Lt(delta) {
			w.Clear()
		} else {
			w.Sub(w, delta)
		}
	} else {
		w.Add(w, delta)
	}
	r.StartWeight = database.NewAmount(w)
}
