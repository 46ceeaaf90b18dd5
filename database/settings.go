package database

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// GetSetting returns the value stored under name. The bool reports whether
// the setting exists at all.
func GetSetting(db *gorm.DB, name string) (string, bool, error) {
	var s Setting
	err := db.Where("name = ?", name).First(&s).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "read setting %s", name)
	}
	return s.Value, true, nil
}

// PutSetting inserts or overwrites a setting.
func PutSetting(db *gorm.DB, name, value string) error {
	var s Setting
	err := db.Where(Setting{Name: name}).
		Assign(map[string]interface{}{"value": value}).
		FirstOrCreate(&s).Error
	return errors.Wrapf(err, "write setting %s", name)
}
