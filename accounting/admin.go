package accounting

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/FactomWyomingEntity/prosper-stake/roles"
	"github.com/FactomWyomingEntity/prosper-stake/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var symbolRegex = regexp.MustCompile(`^[A-Z0-9]{1,12}$`)

// SetRate publishes the reward rate for a day. Oracle only.
func (a *Accountant) SetRate(caller common.Address, day dayclock.DayIndex, rate uint64) error {
	return a.write(func(s *state) error {
		if err := s.roles.Require(roles.Oracle, caller); err != nil {
			return err
		}
		if err := s.rates.Set(day, rate, s.today()); err != nil {
			return err
		}
		return s.emit(&Event{Kind: EventRateSet, Operator: caller.Hex(), Day: int64(day), Rate: rate})
	})
}

// ChangeRate corrects an unclaimed day anywhere in the chain. Oracle only.
func (a *Accountant) ChangeRate(caller common.Address, day dayclock.DayIndex, rate uint64) error {
	return a.write(func(s *state) error {
		if err := s.roles.Require(roles.Oracle, caller); err != nil {
			return err
		}
		if err := s.rates.Change(day, rate); err != nil {
			return err
		}
		return s.emit(&Event{Kind: EventRateChanged, Operator: caller.Hex(), Day: int64(day), Rate: rate})
	})
}

func (a *Accountant) GetRate(day dayclock.DayIndex) (uint64, error) {
	var rate uint64
	err := a.read(func(s *state) error {
		var err error
		rate, err = s.rates.Get(day)
		return err
	})
	return rate, err
}

// RateTail is the last day with a published rate
func (a *Accountant) RateTail() (dayclock.DayIndex, bool, error) {
	var (
		tail dayclock.DayIndex
		ok   bool
	)
	err := a.read(func(s *state) error {
		var err error
		tail, ok, err = s.rates.Tail()
		return err
	})
	return tail, ok, err
}

// Rates lists the most recent entries of the rate table
func (a *Accountant) Rates(limit int) ([]rates.Entry, error) {
	var entries []rates.Entry
	err := a.read(func(s *state) error {
		var err error
		entries, err = s.rates.Entries(limit)
		return err
	})
	return entries, err
}

// SetReserveAddress points payouts at a new reserve account. Admin only.
func (a *Accountant) SetReserveAddress(caller, reserve common.Address) error {
	return a.write(func(s *state) error {
		if err := s.roles.Require(roles.Admin, caller); err != nil {
			return err
		}
		return s.setReserve(caller, reserve)
	})
}

func (s *state) setReserve(caller, reserve common.Address) error {
	if err := database.PutSetting(s.db, settingReserve, reserve.Hex()); err != nil {
		return err
	}
	return s.emit(&Event{Kind: EventReserveChanged, Operator: caller.Hex(), Account: reserve.Hex()})
}

// SetPayoutToken switches the asset rewards are paid in. Admin only.
func (a *Accountant) SetPayoutToken(caller common.Address, symbol string) error {
	return a.write(func(s *state) error {
		if err := s.roles.Require(roles.Admin, caller); err != nil {
			return err
		}
		return s.setPayoutToken(caller, symbol)
	})
}

func (s *state) setPayoutToken(caller common.Address, symbol string) error {
	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("invalid token symbol %q", symbol)
	}
	if err := database.PutSetting(s.db, settingPayoutToken, symbol); err != nil {
		return err
	}
	return s.emit(&Event{Kind: EventPayoutTokenChanged, Operator: caller.Hex(), Detail: symbol})
}

// GrantRole reports whether the account did not already hold the role
func (a *Accountant) GrantRole(caller common.Address, role roles.Role, account common.Address) (bool, error) {
	var changed bool
	err := a.write(func(s *state) error {
		var err error
		changed, err = s.roles.Grant(caller, role, account)
		if err != nil || !changed {
			return err
		}
		return s.emit(&Event{Kind: EventRoleGranted, Operator: caller.Hex(), Account: account.Hex(), Role: role.String()})
	})
	return changed, err
}

func (a *Accountant) RevokeRole(caller common.Address, role roles.Role, account common.Address) (bool, error) {
	var changed bool
	err := a.write(func(s *state) error {
		var err error
		changed, err = s.roles.Revoke(caller, role, account)
		if err != nil || !changed {
			return err
		}
		return s.emit(&Event{Kind: EventRoleRevoked, Operator: caller.Hex(), Account: account.Hex(), Role: role.String()})
	})
	return changed, err
}

func (a *Accountant) HasRole(role roles.Role, account common.Address) (bool, error) {
	var has bool
	err := a.read(func(s *state) error {
		var err error
		has, err = s.roles.Has(role, account)
		return err
	})
	return has, err
}

// Mint creates new staking tokens. Minter only.
func (a *Accountant) Mint(caller, to common.Address, amount *uint256.Int) error {
	return a.write(func(s *state) error {
		if err := s.roles.Require(roles.Minter, caller); err != nil {
			return err
		}
		if err := s.stake.Mint(to, amount); err != nil {
			return err
		}
		return s.emit(&Event{Kind: EventMint, Operator: caller.Hex(), Account: to.Hex(), Amount: amount.Dec()})
	})
}

// The asset ledgers live next to the staking ledger and share its lock, so
// a transfer can never interleave with a settlement reading the same
// balances.

func (a *Accountant) Transfer(symbol string, from, to common.Address, amount *uint256.Int) error {
	return a.write(func(s *state) error {
		err := token.New(s.db, symbol).Transfer(from, to, amount)
		if errors.Is(err, token.ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return err
	})
}

func (a *Accountant) Approve(symbol string, owner, spender common.Address, amount *uint256.Int) error {
	return a.write(func(s *state) error {
		return token.New(s.db, symbol).Approve(owner, spender, amount)
	})
}

func (a *Accountant) IncreaseApproval(symbol string, owner, spender common.Address, amount *uint256.Int) error {
	return a.write(func(s *state) error {
		return token.New(s.db, symbol).IncreaseApproval(owner, spender, amount)
	})
}

func (a *Accountant) Balance(symbol string, account common.Address) (*uint256.Int, error) {
	var bal *uint256.Int
	err := a.read(func(s *state) error {
		var err error
		bal, err = token.New(s.db, symbol).BalanceOf(account)
		return err
	})
	return bal, err
}

func (a *Accountant) Allowance(symbol string, owner, spender common.Address) (*uint256.Int, error) {
	var allowance *uint256.Int
	err := a.read(func(s *state) error {
		var err error
		allowance, err = token.New(s.db, symbol).Allowance(owner, spender)
		return err
	})
	return allowance, err
}

// MintPayout credits the payout asset. It is not reachable through the api;
// operators use it to fund a reserve on test deployments.
func (a *Accountant) MintPayout(symbol string, to common.Address, amount *uint256.Int) error {
	return a.write(func(s *state) error {
		if symbol == s.a.StakeToken {
			return fmt.Errorf("%s is minted through Mint", symbol)
		}
		return token.New(s.db, symbol).Mint(to, amount)
	})
}
