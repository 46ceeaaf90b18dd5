package web_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/authentication"
	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	. "github.com/FactomWyomingEntity/prosper-stake/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	owner  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	minter = common.HexToAddress("0x1000000000000000000000000000000000000002")
	oracle = common.HexToAddress("0x1000000000000000000000000000000000000003")
	bank   = common.HexToAddress("0x3000000000000000000000000000000000000003")
	alice  = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

const startDay dayclock.DayIndex = 19000

type testAPI struct {
	Ledger *accounting.Accountant
	Clock  *dayclock.ManualClock
	Keeper *daykeeper.DayKeeper
	Server *httptest.Server
	keys   map[common.Address]string
}

func (a *testAPI) client(who common.Address) *Client {
	return NewClient(a.Server.URL, a.keys[who])
}

func newTestAPI(t *testing.T) *testAPI {
	require := require.New(t)
	db, err := database.OpenInMemory()
	require.NoError(err)
	t.Cleanup(func() { db.Close() })

	conf := viper.New()
	config.SetDefaults(conf)
	conf.Set(config.ConfigWebRateLimit, 0)

	api := &testAPI{Clock: dayclock.NewManualClock(startDay.Start()), keys: make(map[common.Address]string)}
	api.Ledger, err = accounting.NewAccountant(conf, db, api.Clock)
	require.NoError(err)
	_, err = api.Ledger.Deploy(accounting.DeployParams{
		Owner:       owner,
		Minter:      minter,
		Oracle:      oracle,
		Reserve:     bank,
		PayoutToken: "WBTC",
	})
	require.NoError(err)

	auth, err := authentication.NewAuthenticator(db)
	require.NoError(err)
	auth.Cost = bcrypt.MinCost
	for _, who := range []common.Address{owner, minter, oracle, alice} {
		api.keys[who], err = auth.NewKey(who, "test")
		require.NoError(err)
	}

	s := NewHttpServices(conf, api.Ledger, auth)
	api.Keeper = daykeeper.NewDayKeeper(api.Clock, api.Ledger)
	s.SetDayKeeper(api.Keeper)
	s.InitPrimary()
	api.Server = httptest.NewServer(s.Primary.Handler)
	t.Cleanup(api.Server.Close)
	return api
}

func TestLedgerAPI_StakeAndClaim(t *testing.T) {
	require := require.New(t)
	api := newTestAPI(t)
	require.NoError(api.Ledger.MintPayout("WBTC", bank, uint256.NewInt(10000)))
	require.NoError(api.Ledger.Approve("WBTC", bank, api.Ledger.Address, uint256.NewInt(10000)))

	_, err := api.client(minter).Mint(alice.Hex(), "100")
	require.NoError(err)

	cl := api.client(alice)
	stake, err := cl.Stake("100", false)
	require.NoError(err)
	require.Equal("100", stake.Amount)

	require.NoError(api.client(oracle).SetRate(int64(startDay), 5))
	rate, err := cl.GetRate(int64(startDay))
	require.NoError(err)
	require.Equal(uint64(5), rate)

	_, err = cl.Claim()
	require.True(errors.Is(err, accounting.ErrNothingToClaim))

	api.Clock.NextDay(1)
	pending, err := cl.PendingReward("")
	require.NoError(err)
	require.Equal("500", pending.Amount)
	require.Equal("0.000005", pending.Display)

	ok, err := cl.CanClaim(alice.Hex())
	require.NoError(err)
	require.True(ok)

	paid, err := cl.Claim()
	require.NoError(err)
	require.Equal("500", paid.Amount)

	ok, err = cl.CanClaim("")
	require.False(ok)
	require.True(errors.Is(err, accounting.ErrNothingToClaim))

	bal, err := cl.Balance("WBTC", "")
	require.NoError(err)
	require.Equal("500", bal.Amount)

	rec, err := cl.GetRecord("")
	require.NoError(err)
	require.Equal(int64(startDay+1), rec.LastSettledDay)
	require.Equal("100", rec.StakedAmount.String())

	page, err := cl.Events(accounting.EventFilter{Kind: accounting.EventClaim, Account: alice.Hex()})
	require.NoError(err)
	require.Equal(1, page.TotalRecords)
	require.Equal("500", page.Events[0].Amount)

	unstaked, err := cl.UnstakeAll(false)
	require.NoError(err)
	require.Equal("0", unstaked.Amount)
}

func TestLedgerAPI_Errors(t *testing.T) {
	require := require.New(t)
	api := newTestAPI(t)

	// No key at all
	err := NewClient(api.Server.URL, "").SetRate(int64(startDay), 5)
	require.True(errors.Is(err, accounting.ErrUnauthorized))

	err = NewClient(api.Server.URL, "bogus.key").SetRate(int64(startDay), 5)
	require.True(errors.Is(err, accounting.ErrUnauthorized))

	// A valid key without the role
	err = api.client(alice).SetRate(int64(startDay), 5)
	require.True(errors.Is(err, accounting.ErrUnauthorized))
	var remote *RemoteError
	require.True(errors.As(err, &remote))
	require.Equal("Unauthorized", remote.Kind)

	err = api.client(oracle).SetRate(int64(startDay), 0)
	require.True(errors.Is(err, accounting.ErrRateOutOfBounds))

	_, err = api.client(alice).Stake("-1", false)
	require.True(errors.Is(err, accounting.ErrInvalidAmount))
	_, err = api.client(alice).Stake("10", false)
	require.True(errors.Is(err, accounting.ErrInsufficientBalance))
	_, err = api.client(alice).Unstake("10", false)
	require.True(errors.Is(err, accounting.ErrAmountExceedsStake))

	ok, err := api.client(alice).CanUnstake("")
	require.False(ok)
	require.True(errors.Is(err, accounting.ErrNoStake))

	_, err = api.client(alice).GetStake("not an address")
	require.True(errors.Is(err, accounting.ErrInvalidAddress))
}

func TestLedgerAPI_Admin(t *testing.T) {
	require := require.New(t)
	api := newTestAPI(t)
	admin := api.client(owner)

	changed, err := admin.GrantRole("oracle", alice.Hex())
	require.NoError(err)
	require.True(changed)
	has, err := admin.HasRole("oracle", alice.Hex())
	require.NoError(err)
	require.True(has)
	require.NoError(api.client(alice).SetRate(int64(startDay), 7))

	changed, err = admin.RevokeRole("oracle", alice.Hex())
	require.NoError(err)
	require.True(changed)
	_, err = admin.GrantRole("nobody", alice.Hex())
	require.Error(err)

	st, err := admin.SetPayoutToken("USDC")
	require.NoError(err)
	require.Equal("USDC", st.PayoutToken)
	st, err = admin.SetReserve(alice.Hex())
	require.NoError(err)
	require.Equal(alice, st.Reserve)
	_, err = api.client(alice).SetReserve(alice.Hex())
	require.True(errors.Is(err, accounting.ErrUnauthorized))

	entries, err := admin.Rates(0)
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal(uint64(7), entries[0].Rate)

	_, err = admin.Approve("USDC", alice.Hex(), "40")
	require.NoError(err)
	allowance, err := admin.IncreaseApproval("USDC", alice.Hex(), "2")
	require.NoError(err)
	require.Equal("42", allowance.Amount)
	allowance, err = admin.Allowance("USDC", owner.Hex(), alice.Hex())
	require.NoError(err)
	require.Equal("42", allowance.Amount)

	_, err = api.client(minter).Mint(owner.Hex(), "5")
	require.NoError(err)
	_, err = admin.Transfer("H24", alice.Hex(), "3")
	require.NoError(err)
	bal, err := admin.Balance("H24", alice.Hex())
	require.NoError(err)
	require.Equal("3", bal.Amount)
}

func TestLedgerAPI_DayStatus(t *testing.T) {
	require := require.New(t)
	api := newTestAPI(t)
	cl := api.client(alice)

	require.NoError(api.Keeper.Poll())
	st, err := cl.DayStatus()
	require.NoError(err)
	require.Equal(int64(startDay), st.Day)
	require.True(st.RateMissing)

	require.NoError(api.client(oracle).SetRate(int64(startDay), 5))
	api.Clock.NextDay(1)
	require.NoError(api.Keeper.Poll())
	st, err = cl.DayStatus()
	require.NoError(err)
	require.Equal(int64(startDay+1), st.Day)
	require.False(st.RateMissing)
}

func TestLedgerAPI_Metrics(t *testing.T) {
	require := require.New(t)
	api := newTestAPI(t)
	RegisterPrometheus()

	_, _ = api.client(alice).GetStake("")
	resp, err := http.Get(api.Server.URL + "/metrics")
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)
}
