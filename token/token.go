// Package token is a minimal fungible asset ledger: balances, allowances and
// supply, kept per symbol in sql. It hosts both the staking asset and the
// payout asset the ledger pays rewards in.
package token

import (
	"errors"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jinzhu/gorm"
	pkgerrors "github.com/pkg/errors"
)

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("transfer amount exceeds allowance")
	ErrOverflow              = errors.New("amount overflows 256 bits")
)

type Balance struct {
	Symbol    string          `gorm:"primary_key"`
	Account   string          `gorm:"primary_key"`
	Amount    database.Amount `gorm:"type:varchar(80)"`
	UpdatedAt time.Time
}

type Allowance struct {
	Symbol    string          `gorm:"primary_key"`
	Owner     string          `gorm:"primary_key"`
	Spender   string          `gorm:"primary_key"`
	Amount    database.Amount `gorm:"type:varchar(80)"`
	UpdatedAt time.Time
}

type Supply struct {
	Symbol    string          `gorm:"primary_key"`
	Amount    database.Amount `gorm:"type:varchar(80)"`
	UpdatedAt time.Time
}

// Migrate creates the token tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Balance{}, &Allowance{}, &Supply{}).Error
}

// Token is a handle on one symbol. It does not open transactions itself, the
// caller binds it to one with WithDB when several calls must land together.
type Token struct {
	Symbol string
	db     *gorm.DB
}

func New(db *gorm.DB, symbol string) *Token {
	return &Token{Symbol: symbol, db: db}
}

// WithDB returns a copy of the token that runs against db, usually a
// transaction.
func (t *Token) WithDB(db *gorm.DB) *Token {
	return &Token{Symbol: t.Symbol, db: db}
}

func (t *Token) BalanceOf(account common.Address) (*uint256.Int, error) {
	b, err := t.balance(account)
	if err != nil {
		return nil, err
	}
	return b.Amount.Int(), nil
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	s, err := t.supply()
	if err != nil {
		return nil, err
	}
	return s.Amount.Int(), nil
}

func (t *Token) Allowance(owner, spender common.Address) (*uint256.Int, error) {
	a, err := t.allowance(owner, spender)
	if err != nil {
		return nil, err
	}
	return a.Amount.Int(), nil
}

func (t *Token) Mint(to common.Address, amount *uint256.Int) error {
	s, err := t.supply()
	if err != nil {
		return err
	}
	total, overflow := new(uint256.Int).AddOverflow(s.Amount.Int(), amount)
	if overflow {
		return ErrOverflow
	}
	if err := t.credit(to, amount); err != nil {
		return err
	}
	s.Amount = database.NewAmount(total)
	return wrap(t.db.Save(s).Error, "save supply")
}

func (t *Token) Burn(from common.Address, amount *uint256.Int) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	s, err := t.supply()
	if err != nil {
		return err
	}
	s.Amount = database.NewAmount(new(uint256.Int).Sub(s.Amount.Int(), amount))
	return wrap(t.db.Save(s).Error, "save supply")
}

func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	return t.credit(to, amount)
}

// Approve sets the allowance spender may pull from owner
func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) error {
	a, err := t.allowance(owner, spender)
	if err != nil {
		return err
	}
	a.Amount = database.NewAmount(amount)
	return wrap(t.db.Save(a).Error, "save allowance")
}

// IncreaseApproval adds to the existing allowance
func (t *Token) IncreaseApproval(owner, spender common.Address, amount *uint256.Int) error {
	a, err := t.allowance(owner, spender)
	if err != nil {
		return err
	}
	total, overflow := new(uint256.Int).AddOverflow(a.Amount.Int(), amount)
	if overflow {
		return ErrOverflow
	}
	a.Amount = database.NewAmount(total)
	return wrap(t.db.Save(a).Error, "save allowance")
}

// TransferFrom moves amount out of from, spending the allowance from granted
// to spender.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	a, err := t.allowance(from, spender)
	if err != nil {
		return err
	}
	remaining, short := new(uint256.Int).SubOverflow(a.Amount.Int(), amount)
	if short {
		return ErrInsufficientAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	a.Amount = database.NewAmount(remaining)
	return wrap(t.db.Save(a).Error, "save allowance")
}

func (t *Token) debit(account common.Address, amount *uint256.Int) error {
	b, err := t.balance(account)
	if err != nil {
		return err
	}
	remaining, short := new(uint256.Int).SubOverflow(b.Amount.Int(), amount)
	if short {
		return ErrInsufficientBalance
	}
	b.Amount = database.NewAmount(remaining)
	return wrap(t.db.Save(b).Error, "save balance")
}

func (t *Token) credit(account common.Address, amount *uint256.Int) error {
	b, err := t.balance(account)
	if err != nil {
		return err
	}
	total, overflow := new(uint256.Int).AddOverflow(b.Amount.Int(), amount)
	if overflow {
		return ErrOverflow
	}
	b.Amount = database.NewAmount(total)
	return wrap(t.db.Save(b).Error, "save balance")
}

func (t *Token) balance(account common.Address) (*Balance, error) {
	b := &Balance{Symbol: t.Symbol, Account: account.Hex()}
	err := t.db.Where("symbol = ? AND account = ?", b.Symbol, b.Account).First(b).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, wrap(err, "read balance")
	}
	return b, nil
}

func (t *Token) allowance(owner, spender common.Address) (*Allowance, error) {
	a := &Allowance{Symbol: t.Symbol, Owner: owner.Hex(), Spender: spender.Hex()}
	err := t.db.Where("symbol = ? AND owner = ? AND spender = ?", a.Symbol, a.Owner, a.Spender).First(a).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, wrap(err, "read allowance")
	}
	return a, nil
}

func (t *Token) supply() (*Supply, error) {
	s := &Supply{Symbol: t.Symbol}
	err := t.db.Where("symbol = ?", s.Symbol).First(s).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, wrap(err, "read supply")
	}
	return s, nil
}

func wrap(err error, msg string) error {
	return pkgerrors.Wrap(err, msg)
}
