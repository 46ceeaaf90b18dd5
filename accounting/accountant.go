package accounting

import (
	"fmt"
	"sync"

	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/FactomWyomingEntity/prosper-stake/reserve"
	"github.com/FactomWyomingEntity/prosper-stake/roles"
	"github.com/FactomWyomingEntity/prosper-stake/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	acctLog = log.WithField("mod", "acct")
)

const (
	settingReserve     = "ledger.reserve"
	settingPayoutToken = "ledger.payout_token"
	settingDeployed    = "ledger.deployed"
)

// Accountant owns the staking ledger. Every mutation runs in a single sql
// transaction while holding the writer lock, so an operation either lands
// completely or not at all.
type Accountant struct {
	DB    *gorm.DB
	Clock dayclock.Clock

	// Address is the custody account for staked tokens. It is also the
	// spender the reserve approves for payouts.
	Address        common.Address
	StakeToken     string
	RateUpperBound uint64

	lock sync.RWMutex
}

func NewAccountant(conf *viper.Viper, db *gorm.DB, clock dayclock.Clock) (*Accountant, error) {
	a := new(Accountant)
	a.DB = db
	a.Clock = clock
	if a.Clock == nil {
		a.Clock = dayclock.SystemClock{}
	}

	addr := conf.GetString(config.ConfigLedgerAddress)
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("ledger address %q is not a valid address", addr)
	}
	a.Address = common.HexToAddress(addr)
	a.StakeToken = conf.GetString(config.ConfigLedgerStakeToken)
	if a.StakeToken == "" {
		return nil, fmt.Errorf("a stake token symbol is required")
	}
	a.RateUpperBound = conf.GetUint64(config.ConfigLedgerRateUpperBound)

	if err := a.Migrate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Accountant) Migrate() error {
	for _, m := range []func(*gorm.DB) error{token.Migrate, roles.Migrate, rates.Migrate} {
		if err := m(a.DB); err != nil {
			return err
		}
	}
	return a.DB.AutoMigrate(&MinerRecord{}, &Event{}, &database.Setting{}).Error
}

// state is one operation's view of the ledger, bound to either the database
// or an open transaction.
type state struct {
	a     *Accountant
	db    *gorm.DB
	now   int64
	roles *roles.Registry
	rates *rates.Table
	stake *token.Token

	events []*Event
}

func (a *Accountant) state(db *gorm.DB) *state {
	return &state{
		a:     a,
		db:    db,
		now:   a.Clock.Now(),
		roles: roles.New(db),
		rates: rates.New(db, a.RateUpperBound),
		stake: token.New(db, a.StakeToken),
	}
}

func (s *state) today() dayclock.DayIndex {
	return dayclock.DayOf(s.now)
}

// write runs f in a transaction. Events are stored with the transaction and
// only logged once it commits.
func (a *Accountant) write(f func(s *state) error) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	tx := a.DB.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin")
	}
	s := a.state(tx)
	if err := f(s); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit")
	}

	for _, e := range s.events {
		e.observe()
	}
	return nil
}

func (a *Accountant) read(f func(s *state) error) error {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return f(a.state(a.DB))
}

// gateway is the reserve gateway for the configured payout token. With no
// reserve or token configured, every payout fails NoReserve.
func (s *state) gateway() (*reserve.Gateway, error) {
	g := &reserve.Gateway{
		Spender:     s.a.Address,
		IsShortfall: isShortfall,
	}
	res, ok, err := database.GetSetting(s.db, settingReserve)
	if err != nil {
		return nil, err
	}
	if ok && common.IsHexAddress(res) {
		g.Reserve = common.HexToAddress(res)
	}
	sym, ok, err := database.GetSetting(s.db, settingPayoutToken)
	if err != nil {
		return nil, err
	}
	if ok && sym != "" {
		g.Asset = token.New(s.db, sym)
	}
	return g, nil
}

func isShortfall(err error) bool {
	return errors.Is(err, token.ErrInsufficientBalance) || errors.Is(err, token.ErrInsufficientAllowance)
}

// Settings is the ledger's live configuration
type Settings struct {
	Address     common.Address `json:"address"`
	StakeToken  string         `json:"staketoken"`
	PayoutToken string         `json:"payouttoken"`
	Reserve     common.Address `json:"reserve"`
	Deployed    bool           `json:"deployed"`
}

func (a *Accountant) Settings() (*Settings, error) {
	st := &Settings{Address: a.Address, StakeToken: a.StakeToken}
	err := a.read(func(s *state) error {
		g, err := s.gateway()
		if err != nil {
			return err
		}
		st.Reserve = g.Reserve
		if t, ok := g.Asset.(*token.Token); ok {
			st.PayoutToken = t.Symbol
		}
		_, st.Deployed, err = database.GetSetting(s.db, settingDeployed)
		return err
	})
	return st, err
}

// DeployParams are the one time initialisation values
type DeployParams struct {
	Owner       common.Address
	Minter      common.Address
	Oracle      common.Address
	Reserve     common.Address
	PayoutToken string
}

// Deploy bootstraps the roles and payout settings. It only does anything the
// first time it is called against a database.
func (a *Accountant) Deploy(p DeployParams) (bool, error) {
	if p.Owner == (common.Address{}) {
		return false, fmt.Errorf("deploy requires an owner")
	}

	var deployed bool
	err := a.write(func(s *state) error {
		_, done, err := database.GetSetting(s.db, settingDeployed)
		if err != nil || done {
			return err
		}

		grants := []struct {
			role roles.Role
			acct common.Address
		}{
			{roles.Admin, p.Owner},
			{roles.Minter, p.Minter},
			{roles.Oracle, p.Oracle},
		}
		for _, g := range grants {
			if g.acct == (common.Address{}) {
				continue
			}
			if err := s.roles.Bootstrap(g.role, g.acct); err != nil {
				return err
			}
			if err := s.emit(&Event{Kind: EventRoleGranted, Account: g.acct.Hex(), Role: g.role.String(), Operator: p.Owner.Hex()}); err != nil {
				return err
			}
		}

		if p.Reserve != (common.Address{}) {
			if err := s.setReserve(p.Owner, p.Reserve); err != nil {
				return err
			}
		}
		if p.PayoutToken != "" {
			if err := s.setPayoutToken(p.Owner, p.PayoutToken); err != nil {
				return err
			}
		}
		deployed = true
		return database.PutSetting(s.db, settingDeployed, "true")
	})
	return deployed, err
}
