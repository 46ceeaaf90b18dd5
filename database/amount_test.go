package database_test

import (
	"encoding/json"
	"testing"

	. "github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type amountRow struct {
	ID     uint   `gorm:"primary_key"`
	Amount Amount `gorm:"type:varchar(80)"`
}

func TestAmount_Database(t *testing.T) {
	require := require.New(t)
	db, err := OpenInMemory()
	require.NoError(err)
	defer db.Close()

	require.NoError(db.AutoMigrate(&amountRow{}).Error)

	max := new(uint256.Int).SetAllOne()
	require.NoError(db.Create(&amountRow{ID: 1, Amount: NewAmount(max)}).Error)
	require.NoError(db.Create(&amountRow{ID: 2, Amount: AmountFromUint64(42)}).Error)

	var r amountRow
	require.NoError(db.First(&r, 1).Error)
	require.Equal(max.Dec(), r.Amount.String())

	var small amountRow
	require.NoError(db.First(&small, 2).Error)
	require.Equal("42", small.Amount.String())
}

func TestAmount_JSON(t *testing.T) {
	require := require.New(t)

	data, err := json.Marshal(AmountFromUint64(1000))
	require.NoError(err)
	require.Equal(`"1000"`, string(data))

	var a Amount
	require.NoError(json.Unmarshal([]byte(`"12345678901234567890123"`), &a))
	require.Equal("12345678901234567890123", a.String())

	require.Error(json.Unmarshal([]byte(`"-1"`), &a))
	require.Error(json.Unmarshal([]byte(`"abc"`), &a))
}

func TestParseAmount(t *testing.T) {
	require := require.New(t)

	a, err := ParseAmount("0")
	require.NoError(err)
	require.True(a.IsZero())

	_, err = ParseAmount("")
	require.Error(err)

	b, _ := ParseAmount("7")
	c, _ := ParseAmount("9")
	require.Equal(-1, b.Cmp(c))
	require.Equal(0, b.Cmp(AmountFromUint64(7)))
}

func TestSettings(t *testing.T) {
	require := require.New(t)
	db, err := OpenInMemory()
	require.NoError(err)
	defer db.Close()
	require.NoError(db.AutoMigrate(&Setting{}).Error)

	_, ok, err := GetSetting(db, "missing")
	require.NoError(err)
	require.False(ok)

	require.NoError(PutSetting(db, "reserve", "a"))
	require.NoError(PutSetting(db, "reserve", "b"))
	v, ok, err := GetSetting(db, "reserve")
	require.NoError(err)
	require.True(ok)
	require.Equal("b", v)
}
