package reserve_test

import (
	"errors"
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/reserve"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	bank   = common.HexToAddress("0x3000000000000000000000000000000000000003")
	ledger = common.HexToAddress("0x4000000000000000000000000000000000000004")
	user   = common.HexToAddress("0x2000000000000000000000000000000000000002")

	errShort = errors.New("short")
)

// memAsset is an in memory payout asset
type memAsset struct {
	balances   map[common.Address]uint64
	allowances map[[2]common.Address]uint64
	failPull   error
}

func newMemAsset() *memAsset {
	return &memAsset{
		balances:   make(map[common.Address]uint64),
		allowances: make(map[[2]common.Address]uint64),
	}
}

func (m *memAsset) BalanceOf(a common.Address) (*uint256.Int, error) {
	return uint256.NewInt(m.balances[a]), nil
}

func (m *memAsset) Allowance(o, s common.Address) (*uint256.Int, error) {
	return uint256.NewInt(m.allowances[[2]common.Address{o, s}]), nil
}

func (m *memAsset) TransferFrom(s, from, to common.Address, amount *uint256.Int) error {
	if m.failPull != nil {
		return m.failPull
	}
	m.balances[from] -= amount.Uint64()
	m.balances[to] += amount.Uint64()
	m.allowances[[2]common.Address{from, s}] -= amount.Uint64()
	return nil
}

func TestGateway_CanCover(t *testing.T) {
	type tVec struct {
		Balance   uint64
		Allowance uint64
		Amount    uint64
		Cover     bool
	}

	vecs := []tVec{
		{Balance: 0, Allowance: 0, Amount: 1, Cover: false},
		{Balance: 1000, Allowance: 0, Amount: 50, Cover: false},
		{Balance: 0, Allowance: 1000, Amount: 50, Cover: false},
		{Balance: 1000, Allowance: 1000, Amount: 50, Cover: true},
		{Balance: 50, Allowance: 50, Amount: 50, Cover: true},
		{Balance: 49, Allowance: 50, Amount: 50, Cover: false},
		{Balance: 50, Allowance: 49, Amount: 50, Cover: false},
	}

	for _, v := range vecs {
		asset := newMemAsset()
		asset.balances[bank] = v.Balance
		asset.allowances[[2]common.Address{bank, ledger}] = v.Allowance
		g := &Gateway{Asset: asset, Reserve: bank, Spender: ledger}

		ok, err := g.CanCover(uint256.NewInt(v.Amount))
		require.NoError(t, err)
		if ok != v.Cover {
			t.Errorf("balance %d allowance %d amount %d: exp cover %v", v.Balance, v.Allowance, v.Amount, v.Cover)
		}
	}
}

func TestGateway_NoReserveConfigured(t *testing.T) {
	g := &Gateway{Asset: newMemAsset(), Spender: ledger}
	ok, err := g.CanCover(uint256.NewInt(1))
	require.NoError(t, err)
	require.False(t, ok)
	require.ErrorIs(t, g.Pull(uint256.NewInt(1), user), ErrNoReserve)
}

func TestGateway_Pull(t *testing.T) {
	require := require.New(t)
	asset := newMemAsset()
	asset.balances[bank] = 100
	asset.allowances[[2]common.Address{bank, ledger}] = 100
	g := &Gateway{
		Asset:       asset,
		Reserve:     bank,
		Spender:     ledger,
		IsShortfall: func(err error) bool { return errors.Is(err, errShort) },
	}

	require.NoError(g.Pull(uint256.NewInt(60), user))
	require.Equal(uint64(60), asset.balances[user])
	require.ErrorIs(g.Pull(uint256.NewInt(60), user), ErrNoReserve)

	// the asset can still refuse after the check passed
	asset.failPull = errShort
	require.ErrorIs(g.Pull(uint256.NewInt(10), user), ErrNoReserve)

	other := errors.New("disk on fire")
	asset.failPull = other
	require.ErrorIs(g.Pull(uint256.NewInt(10), user), other)
}
