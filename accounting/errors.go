package accounting

import (
	"errors"

	"github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/FactomWyomingEntity/prosper-stake/reserve"
	"github.com/FactomWyomingEntity/prosper-stake/roles"
	"github.com/FactomWyomingEntity/prosper-stake/token"
)

var (
	ErrNoStake             = errors.New("you need to stake first")
	ErrNothingToClaim      = errors.New("nothing to claim yet")
	ErrAmountExceedsStake  = errors.New("amount is greater than stake")
	ErrInsufficientBalance = errors.New("amount exceeds balance")
	ErrStakeOverflow       = errors.New("stake exceeds the maximum width")
	ErrRewardOverflow      = errors.New("reward exceeds 256 bits")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAddress      = errors.New("invalid address")

	// Raised by the modules the accountant drives, re-exported so callers
	// only need this package.
	ErrNoRateSet          = rates.ErrNoRateSet
	ErrRateOutOfBounds    = rates.ErrRateOutOfBounds
	ErrLaterRateExists    = rates.ErrLaterRateExists
	ErrRateAlreadyClaimed = rates.ErrRateAlreadyClaimed
	ErrNoReserve          = reserve.ErrNoReserve
	ErrUnauthorized       = roles.ErrUnauthorized

	ErrInsufficientAllowance = token.ErrInsufficientAllowance
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNoStake, "NoStake"},
	{ErrNoRateSet, "NoRateSet"},
	{ErrRateOutOfBounds, "RateOutOfBounds"},
	{ErrLaterRateExists, "LaterRateExists"},
	{ErrRateAlreadyClaimed, "RateAlreadyClaimed"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrInsufficientAllowance, "InsufficientAllowance"},
	{ErrAmountExceedsStake, "AmountExceedsStake"},
	{ErrNothingToClaim, "NothingToClaim"},
	{ErrNoReserve, "NoReserve"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrStakeOverflow, "StakeOverflow"},
	{ErrRewardOverflow, "RewardOverflow"},
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrInvalidAddress, "InvalidAddress"},
}

// Kind names the category of err so a remote caller can tell "try again
// tomorrow" from "the reserve is empty". Anything unknown is "Internal".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}

// ErrorFromKind is the inverse of Kind, used by clients to turn a remote
// error back into a sentinel.
func ErrorFromKind(kind string) error {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err
		}
	}
	return nil
}

// skippable errors are the ones a forced stake or unstake may ignore
func skippable(err error) bool {
	return errors.Is(err, ErrNoRateSet) || errors.Is(err, ErrNoReserve)
}
