package accounting

import (
	"errors"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Stake settles the caller's position and moves amount of the staking token
// into custody.
func (a *Accountant) Stake(caller common.Address, amount *uint256.Int, force bool) error {
	return a.write(func(s *state) error {
		rec, err := s.record(caller)
		if err != nil {
			return err
		}
		if err := s.settleOrSkip(rec, force); err != nil {
			return err
		}

		total, overflow := new(uint256.Int).AddOverflow(rec.StakedAmount.Int(), amount)
		if overflow || total.BitLen() > MaxStakeBits {
			return ErrStakeOverflow
		}
		if err := s.stake.Transfer(caller, s.a.Address, amount); err != nil {
			return mapTokenErr(err)
		}

		rec.StakedAmount = database.NewAmount(total)
		rec.weigh(amount, s.now, false)
		if err := s.saveRecord(rec); err != nil {
			return err
		}
		return s.emit(&Event{Kind: EventStake, Account: rec.Account, Amount: amount.Dec(), Day: int64(s.today())})
	})
}

// Unstake settles the caller's position and returns amount of the staking
// token from custody.
func (a *Accountant) Unstake(caller common.Address, amount *uint256.Int, force bool) error {
	return a.write(func(s *state) error {
		return s.unstake(caller, amount, force)
	})
}

// UnstakeAll withdraws the caller's entire stake
func (a *Accountant) UnstakeAll(caller common.Address, force bool) error {
	return a.write(func(s *state) error {
		return s.unstake(caller, nil, force)
	})
}

// unstake withdraws amount, or everything if amount is nil
func (s *state) unstake(caller common.Address, amount *uint256.Int, force bool) error {
	rec, err := s.record(caller)
	if err != nil {
		return err
	}
	if err := s.settleOrSkip(rec, force); err != nil {
		return err
	}

	staked := rec.StakedAmount.Int()
	if amount == nil {
		amount = staked.Clone()
	}
	if staked.Lt(amount) {
		return ErrAmountExceedsStake
	}
	if staked.IsZero() {
		return ErrNoStake
	}

	if err := s.stake.Transfer(s.a.Address, caller, amount); err != nil {
		return mapTokenErr(err)
	}
	rec.weigh(amount, s.now, true)
	rec.StakedAmount = database.NewAmount(staked.Sub(staked, amount))
	if staked.IsZero() {
		// A full exit forfeits today, a later stake starts from nothing
		rec.StartWeight = database.Amount{}
	}
	if err := s.saveRecord(rec); err != nil {
		return err
	}

	neg := "-" + amount.Dec()
	if amount.IsZero() {
		neg = "0"
	}
	return s.emit(&Event{Kind: EventStake, Account: rec.Account, Amount: neg, Day: int64(s.today())})
}

// Claim pays out the reward accrued so far and returns the amount paid.
func (a *Accountant) Claim(caller common.Address) (*uint256.Int, error) {
	var paid *uint256.Int
	err := a.write(func(s *state) error {
		rec, err := s.record(caller)
		if err != nil {
			return err
		}
		if rec.StakedAmount.IsZero() {
			return ErrNoStake
		}
		paid, err = s.settle(rec)
		if err != nil {
			return err
		}
		if paid.IsZero() {
			return ErrNothingToClaim
		}
		return s.saveRecord(rec)
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// PendingReward is what a settlement right now would pay. A staker with no
// stake is owed nothing.
func (a *Accountant) PendingReward(account common.Address) (*uint256.Int, error) {
	var reward *uint256.Int
	err := a.read(func(s *state) error {
		rec, err := s.record(account)
		if err != nil {
			return err
		}
		acc, err := s.pending(rec)
		if err != nil {
			return err
		}
		reward = acc.Reward
		return nil
	})
	return reward, err
}

// CanClaim reports whether Claim would succeed right now, and if not, why.
func (a *Accountant) CanClaim(account common.Address) (bool, error) {
	err := a.read(func(s *state) error {
		rec, err := s.record(account)
		if err != nil {
			return err
		}
		if rec.StakedAmount.IsZero() {
			return ErrNoStake
		}
		acc, err := s.pending(rec)
		if err != nil {
			return err
		}
		if acc.Reward.IsZero() {
			return ErrNothingToClaim
		}
		return s.covered(acc.Reward)
	})
	return err == nil, err
}

// CanUnstake reports whether an unforced unstake would get past settlement.
func (a *Accountant) CanUnstake(account common.Address) (bool, error) {
	err := a.read(func(s *state) error {
		rec, err := s.record(account)
		if err != nil {
			return err
		}
		if rec.StakedAmount.IsZero() {
			return ErrNoStake
		}
		acc, err := s.pending(rec)
		if err != nil {
			return err
		}
		if acc.Reward.IsZero() {
			return nil
		}
		return s.covered(acc.Reward)
	})
	return err == nil, err
}

func (s *state) covered(amount *uint256.Int) error {
	g, err := s.gateway()
	if err != nil {
		return err
	}
	ok, err := g.CanCover(amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoReserve
	}
	return nil
}

func (a *Accountant) GetStake(account common.Address) (*uint256.Int, error) {
	rec, err := a.GetRecord(account)
	if err != nil {
		return nil, err
	}
	return rec.StakedAmount.Int(), nil
}

// GetRecord returns the stored position. Accounts that never staked get an
// empty record.
func (a *Accountant) GetRecord(account common.Address) (*MinerRecord, error) {
	var rec *MinerRecord
	err := a.read(func(s *state) error {
		var err error
		rec, err = s.record(account)
		return err
	})
	return rec, err
}

func mapTokenErr(err error) error {
	if errors.Is(err, token.ErrInsufficientBalance) {
		return ErrInsufficientBalance
	}
	if errors.Is(err, token.ErrOverflow) {
		return ErrStakeOverflow
	}
	return err
}
