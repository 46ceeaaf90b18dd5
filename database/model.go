package database

import (
	"time"
)

// Setting is a single key/value row. Used for the handful of scalars the
// ledger keeps (reserve account, payout token, watermark).
type Setting struct {
	Name      string `gorm:"primary_key"`
	Value     string
	UpdatedAt time.Time
}
