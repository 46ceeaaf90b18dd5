package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// Amount is an unsigned 256 bit token amount. It is stored as a decimal
// string so every SQL backend can hold it without loss.
type Amount struct {
	v uint256.Int
}

func NewAmount(v *uint256.Int) Amount {
	var a Amount
	if v != nil {
		a.v.Set(v)
	}
	return a
}

func AmountFromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// ParseAmount reads a base 10 amount.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return a, fmt.Errorf("invalid amount %q: %s", s, err.Error())
	}
	return a, nil
}

// Int returns a copy of the value, callers are free to mutate it.
func (a Amount) Int() *uint256.Int {
	return a.v.Clone()
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) String() string {
	return a.v.Dec()
}

// Value implements driver.Valuer
func (a Amount) Value() (driver.Value, error) {
	return a.v.Dec(), nil
}

// Scan implements sql.Scanner
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		a.v.Clear()
		return nil
	case string:
		return a.v.SetFromDecimal(v)
	case []byte:
		return a.v.SetFromDecimal(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		a.v.SetUint64(uint64(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into an amount", src)
	}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.v.Dec())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = p
	return nil
}
