package database

import (
	"github.com/jinzhu/gorm"
)

// OpenInMemory returns a fresh sqlite database living only in memory. Every
// call gets its own database, which is what the unit tests want.
func OpenInMemory() (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a different database
	db.DB().SetMaxOpenConns(1)
	return db, nil
}
