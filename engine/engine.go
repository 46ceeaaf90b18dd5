package engine

import (
	"context"
	"fmt"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/authentication"
	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	"github.com/FactomWyomingEntity/prosper-stake/exit"
	"github.com/FactomWyomingEntity/prosper-stake/web"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	engLog = log.WithField("mod", "eng")
)

type StakeEngine struct {
	conf *viper.Viper

	Database  *database.SqlDatabase
	Ledger    *accounting.Accountant
	Auth      *authentication.Authenticator
	DayKeeper *daykeeper.DayKeeper
	Web       *web.HttpServices
}

// Sets up all the module connections and serves as an an overview
// with access to all modules.
func Setup(conf *viper.Viper) (*StakeEngine, error) {
	e := new(StakeEngine)
	e.conf = conf

	// Init modules
	err := e.init()
	if err != nil {
		return nil, err
	}

	// Link modules
	err = e.link()
	if err != nil {
		return nil, err
	}

	return e, nil
}

// init calls the 'New' on all the modules to initialize them with their
// configurations
func (e *StakeEngine) init() error {
	db, err := database.New(e.conf)
	if err != nil {
		return err
	}
	// Add all closes
	exit.GlobalExitHandler.AddExit(db.Close)

	ledger, err := accounting.NewAccountant(e.conf, db.DB, dayclock.SystemClock{})
	if err != nil {
		return err
	}

	auth, err := authentication.NewAuthenticator(db.DB)
	if err != nil {
		return err
	}

	keeper := daykeeper.NewDayKeeper(ledger.Clock, ledger)
	if p := e.conf.GetDuration(config.ConfigDayKeeperPollingPeriod); p > 0 {
		keeper.PollInterval = p
	}

	// Set all the fields so we can access them from whoever has the engine
	e.Database = db
	e.Ledger = ledger
	e.Auth = auth
	e.DayKeeper = keeper
	e.Web = web.NewHttpServices(e.conf, ledger, auth)

	return e.deploy()
}

// deploy bootstraps a fresh ledger from the Deploy section of the config.
// Once deployed, the section is ignored.
func (e *StakeEngine) deploy() error {
	p, err := DeployParamsFromConfig(e.conf)
	if err != nil {
		return err
	}
	if p.Owner == (common.Address{}) {
		engLog.Debug("no deploy owner configured, skipping deploy")
		return nil
	}

	done, err := e.Ledger.Deploy(*p)
	if err != nil {
		return err
	}
	if done {
		engLog.WithFields(log.Fields{
			"owner":   p.Owner.Hex(),
			"reserve": p.Reserve.Hex(),
			"payout":  p.PayoutToken,
		}).Info("ledger deployed")
	}
	return nil
}

func DeployParamsFromConfig(conf *viper.Viper) (*accounting.DeployParams, error) {
	p := new(accounting.DeployParams)
	p.PayoutToken = conf.GetString(config.ConfigDeployPayoutToken)
	for key, dst := range map[string]*common.Address{
		config.ConfigDeployOwner:   &p.Owner,
		config.ConfigDeployMinter:  &p.Minter,
		config.ConfigDeployOracle:  &p.Oracle,
		config.ConfigDeployReserve: &p.Reserve,
	} {
		v := conf.GetString(key)
		if v == "" {
			continue
		}
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("%s: %q is not an address", key, v)
		}
		*dst = common.HexToAddress(v)
	}
	return p, nil
}

func (e *StakeEngine) link() error {
	e.Web.SetDayKeeper(e.DayKeeper)

	accounting.RegisterPrometheus()
	daykeeper.RegisterPrometheus()
	web.RegisterPrometheus()
	return nil
}

func (e *StakeEngine) Run(ctx context.Context) {
	e.Web.InitPrimary()
	e.Web.Listen()
	exit.GlobalExitHandler.AddExit(e.Web.Close)

	go e.DayKeeper.Run(ctx)

	<-ctx.Done()
}
