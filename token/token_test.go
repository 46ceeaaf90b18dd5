package token_test

import (
	"testing"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	. "github.com/FactomWyomingEntity/prosper-stake/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x1000000000000000000000000000000000000001")
	user  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	bank  = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func testDB(t *testing.T) *gorm.DB {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func TestToken_Mint(t *testing.T) {
	require := require.New(t)
	wbtc := New(testDB(t), "WBTC")

	require.NoError(wbtc.Mint(owner, u(1000)))
	bal, err := wbtc.BalanceOf(owner)
	require.NoError(err)
	require.Equal(u(1000), bal)

	supply, err := wbtc.TotalSupply()
	require.NoError(err)
	require.Equal(u(1000), supply)

	require.NoError(wbtc.Burn(owner, u(400)))
	supply, _ = wbtc.TotalSupply()
	require.Equal(u(600), supply)

	require.ErrorIs(wbtc.Burn(owner, u(601)), ErrInsufficientBalance)
}

func TestToken_Transfer(t *testing.T) {
	require := require.New(t)
	h24 := New(testDB(t), "H24")

	require.ErrorIs(h24.Transfer(user, owner, u(10)), ErrInsufficientBalance)

	require.NoError(h24.Mint(user, u(10)))
	require.NoError(h24.Transfer(user, owner, u(3)))
	require.NoError(h24.Transfer(user, owner, u(0)))

	bal, _ := h24.BalanceOf(user)
	require.Equal(u(7), bal)
	bal, _ = h24.BalanceOf(owner)
	require.Equal(u(3), bal)

	// sending to yourself changes nothing
	require.NoError(h24.Transfer(user, user, u(7)))
	bal, _ = h24.BalanceOf(user)
	require.Equal(u(7), bal)
}

func TestToken_Symbols(t *testing.T) {
	require := require.New(t)
	db := testDB(t)
	a, b := New(db, "H24"), New(db, "WBTC")

	require.NoError(a.Mint(user, u(5)))
	bal, err := b.BalanceOf(user)
	require.NoError(err)
	require.True(bal.IsZero())
}

func TestToken_Approval(t *testing.T) {
	require := require.New(t)
	wbtc := New(testDB(t), "WBTC")
	require.NoError(wbtc.Mint(bank, u(1000)))

	allowance, err := wbtc.Allowance(bank, user)
	require.NoError(err)
	require.True(allowance.IsZero())
	require.ErrorIs(wbtc.TransferFrom(user, bank, user, u(500)), ErrInsufficientAllowance)

	require.NoError(wbtc.IncreaseApproval(bank, user, u(300)))
	require.NoError(wbtc.IncreaseApproval(bank, user, u(200)))
	// allowance is directional
	allowance, _ = wbtc.Allowance(user, bank)
	require.True(allowance.IsZero())

	require.NoError(wbtc.TransferFrom(user, bank, user, u(500)))
	bal, _ := wbtc.BalanceOf(user)
	require.Equal(u(500), bal)
	allowance, _ = wbtc.Allowance(bank, user)
	require.True(allowance.IsZero())

	// enough allowance, not enough balance
	require.NoError(wbtc.Approve(bank, user, u(10000)))
	require.ErrorIs(wbtc.TransferFrom(user, bank, user, u(501)), ErrInsufficientBalance)
	allowance, _ = wbtc.Allowance(bank, user)
	require.Equal(u(10000), allowance)
}

func TestToken_Overflow(t *testing.T) {
	require := require.New(t)
	wbtc := New(testDB(t), "WBTC")

	max := new(uint256.Int).SetAllOne()
	require.NoError(wbtc.Mint(bank, max))
	require.ErrorIs(wbtc.Mint(user, u(1)), ErrOverflow)

	require.NoError(wbtc.Approve(bank, user, max))
	require.ErrorIs(wbtc.IncreaseApproval(bank, user, u(1)), ErrOverflow)
}
