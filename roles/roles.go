package roles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/jinzhu/gorm"
	pkgerrors "github.com/pkg/errors"
)

var ErrUnauthorized = errors.New("caller lacks the required role")

// Role identifies a capability. Ids match the hashes an evm AccessControl
// contract would use, so indexers can treat both the same way.
type Role common.Hash

var (
	// Admin governs every role, itself included
	Admin  = Role{}
	Minter = Role(crypto.Keccak256Hash([]byte("MINTER_ROLE")))
	Oracle = Role(crypto.Keccak256Hash([]byte("ORACLE_ROLE")))
)

var names = map[Role]string{
	Admin:  "admin",
	Minter: "minter",
	Oracle: "oracle",
}

func (r Role) String() string {
	if n, ok := names[r]; ok {
		return n
	}
	return common.Hash(r).Hex()
}

func (r Role) Hex() string {
	return common.Hash(r).Hex()
}

// Parse accepts either a role name or its hex id
func Parse(s string) (Role, error) {
	for r, n := range names {
		if strings.EqualFold(n, s) || strings.EqualFold(r.Hex(), s) {
			return r, nil
		}
	}
	return Role{}, fmt.Errorf("unknown role %q", s)
}

// adminOf returns the role allowed to grant and revoke r. Flat structure,
// admin manages everything.
func adminOf(r Role) Role {
	return Admin
}

type Assignment struct {
	Role      string `gorm:"primary_key"`
	Account   string `gorm:"primary_key"`
	CreatedAt time.Time
}

func (Assignment) TableName() string { return "role_assignments" }

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Assignment{}).Error
}

// Registry is the set of (role, account) pairs
type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) WithDB(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) Has(role Role, account common.Address) (bool, error) {
	var count int
	err := r.db.Model(&Assignment{}).
		Where("role = ? AND account = ?", role.Hex(), account.Hex()).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "read role")
	}
	return count > 0, nil
}

// Require fails with ErrUnauthorized unless account holds role
func (r *Registry) Require(role Role, account common.Address) error {
	ok, err := r.Has(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Grant gives account the role. It reports whether anything changed,
// granting a role that is already held is a no-op.
func (r *Registry) Grant(caller common.Address, role Role, account common.Address) (bool, error) {
	if err := r.Require(adminOf(role), caller); err != nil {
		return false, err
	}
	return r.grant(role, account)
}

// Revoke removes the role. Admins may revoke admin from themselves, which
// can leave the registry without an admin.
func (r *Registry) Revoke(caller common.Address, role Role, account common.Address) (bool, error) {
	if err := r.Require(adminOf(role), caller); err != nil {
		return false, err
	}
	res := r.db.Where("role = ? AND account = ?", role.Hex(), account.Hex()).Delete(&Assignment{})
	if res.Error != nil {
		return false, pkgerrors.Wrap(res.Error, "delete role")
	}
	return res.RowsAffected > 0, nil
}

// Bootstrap grants without an authorization check. Only for deployment, the
// ledger calls it once against an empty registry.
func (r *Registry) Bootstrap(role Role, account common.Address) error {
	_, err := r.grant(role, account)
	return err
}

// Members lists the accounts holding role
func (r *Registry) Members(role Role) ([]common.Address, error) {
	var rows []Assignment
	err := r.db.Where("role = ?", role.Hex()).Order("account asc").Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list role")
	}
	members := make([]common.Address, 0, len(rows))
	for _, a := range rows {
		members = append(members, common.HexToAddress(a.Account))
	}
	return members, nil
}

func (r *Registry) grant(role Role, account common.Address) (bool, error) {
	has, err := r.Has(role, account)
	if err != nil || has {
		return false, err
	}
	err = r.db.Create(&Assignment{Role: role.Hex(), Account: account.Hex()}).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "create role")
	}
	return true, nil
}
