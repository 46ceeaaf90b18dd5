// Package reserve decides whether the reward reserve can cover a payout and
// pulls the payout when it can.
package reserve

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var ErrNoReserve = errors.New("reserve cannot cover the payout")

// PayoutAsset is what the gateway needs from the payout asset's ledger
type PayoutAsset interface {
	BalanceOf(account common.Address) (*uint256.Int, error)
	Allowance(owner, spender common.Address) (*uint256.Int, error)
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}

// Gateway pulls payouts from Reserve, acting as Spender. The reserve account
// must hold the balance and must have approved Spender for at least the
// amount.
type Gateway struct {
	Asset   PayoutAsset
	Reserve common.Address
	Spender common.Address

	// IsShortfall reports whether an asset error means the reserve came up
	// short, as opposed to a storage failure.
	IsShortfall func(error) bool
}

// CanCover is a read only check. Balances can move before a later Pull, so
// Pull checks again.
func (g *Gateway) CanCover(amount *uint256.Int) (bool, error) {
	if g.Asset == nil || g.Reserve == (common.Address{}) {
		return false, nil
	}
	bal, err := g.Asset.BalanceOf(g.Reserve)
	if err != nil {
		return false, err
	}
	if bal.Lt(amount) {
		return false, nil
	}
	allowance, err := g.Asset.Allowance(g.Reserve, g.Spender)
	if err != nil {
		return false, err
	}
	return !allowance.Lt(amount), nil
}

// Pull transfers amount from the reserve to the recipient.
func (g *Gateway) Pull(amount *uint256.Int, to common.Address) error {
	ok, err := g.CanCover(amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoReserve
	}

	err = g.Asset.TransferFrom(g.Spender, g.Reserve, to, amount)
	if err != nil && g.IsShortfall != nil && g.IsShortfall(err) {
		return ErrNoReserve
	}
	return err
}
