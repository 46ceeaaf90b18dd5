package config

import (
	"time"

	"github.com/spf13/viper"
)

// All config locations
const (
	LoggingLevel = "app.loglevel"

	ConfigSQLDialect  = "Database.dialect"
	ConfigSQLPath     = "Database.path"
	ConfigSQLHost     = "Database.host"
	ConfigSQLPort     = "Database.port"
	ConfigSQLDBName   = "Database.dbname"
	ConfigSQLUsername = "Database.username"
	ConfigSQLPassword = "Database.password"

	ConfigLedgerAddress        = "Ledger.Address"
	ConfigLedgerStakeToken     = "Ledger.StakeToken"
	ConfigLedgerRateUpperBound = "Ledger.RateUpperBound"

	// Deployment parameters, only read the first time the ledger starts
	// against an empty database.
	ConfigDeployOwner       = "Deploy.Owner"
	ConfigDeployMinter      = "Deploy.Minter"
	ConfigDeployOracle      = "Deploy.Oracle"
	ConfigDeployReserve     = "Deploy.Reserve"
	ConfigDeployPayoutToken = "Deploy.PayoutToken"

	ConfigPayoutDecimals = "Tokens.PayoutDecimals"
	ConfigStakeDecimals  = "Tokens.StakeDecimals"

	ConfigWebPort      = "Web.Port"
	ConfigWebRateLimit = "Web.RateLimit"

	ConfigDayKeeperPollingPeriod = "DayKeeper.PollingPeriod"

	ConfigProfilePort   = "Profile.Port"
	ConfigProfileExpose = "Profile.Expose"
)

func SetDefaults(conf *viper.Viper) {
	// All config defaults
	conf.SetDefault(ConfigSQLDialect, "sqlite3")
	conf.SetDefault(ConfigSQLPath, "prosper-stake.db")
	conf.SetDefault(ConfigSQLHost, "localhost")
	conf.SetDefault(ConfigSQLPort, 5432)
	conf.SetDefault(ConfigSQLDBName, "postgres")
	conf.SetDefault(ConfigSQLUsername, "postgres")
	conf.SetDefault(ConfigSQLPassword, "password")

	// Custody account for staked tokens. Nobody holds a key for it.
	conf.SetDefault(ConfigLedgerAddress, "0x5e0f6e4c0d1f1a7e6f0a4b8b0c1d5d3a8f2c7b91")
	conf.SetDefault(ConfigLedgerStakeToken, "H24")
	conf.SetDefault(ConfigLedgerRateUpperBound, 1000000)

	conf.SetDefault(ConfigDeployOwner, "")
	conf.SetDefault(ConfigDeployMinter, "")
	conf.SetDefault(ConfigDeployOracle, "")
	conf.SetDefault(ConfigDeployReserve, "")
	conf.SetDefault(ConfigDeployPayoutToken, "WBTC")

	conf.SetDefault(ConfigPayoutDecimals, 8)
	conf.SetDefault(ConfigStakeDecimals, 0)

	conf.SetDefault(ConfigWebPort, 7070)
	conf.SetDefault(ConfigWebRateLimit, 100)

	conf.SetDefault(ConfigDayKeeperPollingPeriod, time.Second*10)

	conf.SetDefault(ConfigProfilePort, 6060)
	conf.SetDefault(ConfigProfileExpose, false)
}
