package authentication

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Factom-Asset-Tokens/base58"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jinzhu/gorm"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	aLog = log.WithFields(log.Fields{"mod": "auth"})
)

var ErrInvalidKey = errors.New("invalid api key")

const (
	idLength     = 9
	secretLength = 24
)

// Authenticator maps api keys to the account they act for. A key is
// "<id>.<secret>", only a bcrypt hash of the secret is stored.
type Authenticator struct {
	DB *gorm.DB

	// Cost is the bcrypt cost for new keys
	Cost int
}

type APIKey struct {
	ID        string `gorm:"primary_key" json:"id"`
	Account   string `gorm:"index:idx_key_account" json:"account"`
	Label     string `json:"label"`
	Hash      []byte `json:"-"`
	Revoked   bool   `json:"revoked"`
	CreatedAt time.Time
}

func (APIKey) TableName() string { return "api_keys" }

func NewAuthenticator(db *gorm.DB) (*Authenticator, error) {
	a := new(Authenticator)
	a.DB = db
	a.Cost = bcrypt.DefaultCost
	if err := db.AutoMigrate(&APIKey{}).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// NewKey issues a key for account. The returned key is the only copy of the
// secret.
func (a *Authenticator) NewKey(account common.Address, label string) (string, error) {
	id, err := randomString(idLength)
	if err != nil {
		return "", err
	}
	secret, err := randomString(secretLength)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), a.Cost)
	if err != nil {
		return "", err
	}

	k := APIKey{ID: id, Account: account.Hex(), Label: label, Hash: hash}
	if err := a.DB.Create(&k).Error; err != nil {
		return "", pkgerrors.Wrap(err, "create key")
	}
	aLog.WithFields(log.Fields{"id": id, "account": k.Account}).Info("api key issued")
	return id + "." + secret, nil
}

// Authenticate returns the account the key acts for
func (a *Authenticator) Authenticate(key string) (common.Address, error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return common.Address{}, ErrInvalidKey
	}

	var k APIKey
	dbErr := a.DB.Where("id = ?", parts[0]).First(&k)
	if gorm.IsRecordNotFoundError(dbErr.Error) {
		return common.Address{}, ErrInvalidKey
	}
	if dbErr.Error != nil {
		return common.Address{}, pkgerrors.Wrap(dbErr.Error, "read key")
	}
	if k.Revoked {
		return common.Address{}, ErrInvalidKey
	}
	if bcrypt.CompareHashAndPassword(k.Hash, []byte(parts[1])) != nil {
		return common.Address{}, ErrInvalidKey
	}
	return common.HexToAddress(k.Account), nil
}

// Revoke disables a key by id
func (a *Authenticator) Revoke(id string) error {
	res := a.DB.Model(&APIKey{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "revoke key")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no key with id %s", id)
	}
	return nil
}

// Keys lists every key issued to account, revoked ones included
func (a *Authenticator) Keys(account common.Address) ([]APIKey, error) {
	var keys []APIKey
	err := a.DB.Where("account = ?", account.Hex()).Order("created_at asc").Find(&keys).Error
	return keys, pkgerrors.Wrap(err, "list keys")
}

func randomString(n int) (string, error) {
	data := make([]byte, n)
	if _, err := crand.Read(data); err != nil {
		return "", err
	}
	return base58.Encode(data), nil
}
