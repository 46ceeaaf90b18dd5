package database

import (
	"fmt"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/config"
	"github.com/cenkalti/backoff"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	dbLog = log.WithField("mod", "db")
)

// Default values for ConnectExponentialBackOff.
const (
	DefaultInitialInterval     = 500 * time.Millisecond
	DefaultRandomizationFactor = 0.5
	DefaultMultiplier          = 1.5
	DefaultMaxInterval         = 5 * time.Second
	DefaultMaxElapsedTime      = 30 * time.Second
)

type SqlDatabase struct {
	*gorm.DB
}

// New opens the database described by the config. Postgres may still be
// booting when we start, so the connection is retried for a while.
func New(conf *viper.Viper) (*SqlDatabase, error) {
	dialect := conf.GetString(config.ConfigSQLDialect)
	var args string
	switch dialect {
	case "postgres":
		args = fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=disable",
			conf.GetString(config.ConfigSQLHost),
			conf.GetInt(config.ConfigSQLPort),
			conf.GetString(config.ConfigSQLUsername),
			conf.GetString(config.ConfigSQLDBName),
			conf.GetString(config.ConfigSQLPassword),
		)
	case "sqlite3":
		args = conf.GetString(config.ConfigSQLPath)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}

	var db *gorm.DB
	operation := func() error {
		var err error
		db, err = gorm.Open(dialect, args)
		if err != nil {
			dbLog.WithError(err).WithField("dialect", dialect).Warn("failed to connect, retrying")
		}
		return err
	}

	err := backoff.Retry(operation, ConnectExponentialBackOff())
	if err != nil {
		return nil, err
	}

	if dialect == "sqlite3" {
		// sqlite only tolerates a single writer
		db.DB().SetMaxOpenConns(1)
	}

	s := new(SqlDatabase)
	s.DB = db
	return s, nil
}

// ConnectExponentialBackOff creates an instance of ExponentialBackOff
func ConnectExponentialBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     DefaultInitialInterval,
		RandomizationFactor: DefaultRandomizationFactor,
		Multiplier:          DefaultMultiplier,
		MaxInterval:         DefaultMaxInterval,
		MaxElapsedTime:      DefaultMaxElapsedTime,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
