package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/daykeeper"
	"github.com/FactomWyomingEntity/prosper-stake/rates"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
)

// RemoteError is a ledger error returned over the api. It unwraps to the
// matching accounting sentinel, so errors.Is works across the wire.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return accounting.ErrorFromKind(e.Kind)
}

// Client talks to the ledger api
type Client struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

func NewClient(url, apiKey string) *Client {
	c := new(Client)
	c.URL = strings.TrimRight(url, "/") + APIBase
	c.APIKey = apiKey
	c.HTTP = &http.Client{Timeout: time.Second * 15}
	return c
}

func (c *Client) call(method string, args, reply interface{}) error {
	if args == nil {
		args = struct{}{}
	}
	data, err := json2.EncodeClientRequest("ledger."+method, args)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set(APIKeyHdr, c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "call %s", method)
	}
	defer resp.Body.Close()

	err = json2.DecodeClientResponse(resp.Body, reply)
	if jErr, ok := err.(*json2.Error); ok {
		kind, _ := jErr.Data.(string)
		return &RemoteError{Kind: kind, Message: jErr.Message}
	}
	return err
}

// checked turns a CheckReply back into (ok, reason)
func checked(reply CheckReply, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	if reply.Kind != "" {
		return reply.OK, &RemoteError{Kind: reply.Kind, Message: reply.Reason}
	}
	return reply.OK, nil
}

func (c *Client) Stake(amount string, force bool) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Stake", StakeArgs{Amount: amount, Force: force}, &reply)
}

func (c *Client) Unstake(amount string, force bool) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Unstake", StakeArgs{Amount: amount, Force: force}, &reply)
}

func (c *Client) UnstakeAll(force bool) (*Amount, error) {
	var reply Amount
	return &reply, c.call("UnstakeAll", ForceArgs{Force: force}, &reply)
}

func (c *Client) Claim() (*Amount, error) {
	var reply Amount
	return &reply, c.call("Claim", nil, &reply)
}

// GetStake returns the stake of account, or of the caller if account is
// empty. The same goes for the other account lookups.
func (c *Client) GetStake(account string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("GetStake", AccountArgs{Account: account}, &reply)
}

func (c *Client) GetRecord(account string) (*accounting.MinerRecord, error) {
	var reply accounting.MinerRecord
	return &reply, c.call("GetRecord", AccountArgs{Account: account}, &reply)
}

func (c *Client) PendingReward(account string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("PendingReward", AccountArgs{Account: account}, &reply)
}

func (c *Client) CanClaim(account string) (bool, error) {
	var reply CheckReply
	err := c.call("CanClaim", AccountArgs{Account: account}, &reply)
	return checked(reply, err)
}

func (c *Client) CanUnstake(account string) (bool, error) {
	var reply CheckReply
	err := c.call("CanUnstake", AccountArgs{Account: account}, &reply)
	return checked(reply, err)
}

func (c *Client) SetRate(day int64, rate uint64) error {
	var reply RateArgs
	return c.call("SetRate", RateArgs{Day: day, Rate: rate}, &reply)
}

func (c *Client) ChangeRate(day int64, rate uint64) error {
	var reply RateArgs
	return c.call("ChangeRate", RateArgs{Day: day, Rate: rate}, &reply)
}

func (c *Client) GetRate(day int64) (uint64, error) {
	var reply RateArgs
	err := c.call("GetRate", RateArgs{Day: day}, &reply)
	return reply.Rate, err
}

func (c *Client) Rates(limit int32) ([]rates.Entry, error) {
	var reply []rates.Entry
	err := c.call("Rates", RatesArgs{Limit: limit}, &reply)
	return reply, err
}

func (c *Client) SetReserve(address string) (*accounting.Settings, error) {
	var reply accounting.Settings
	return &reply, c.call("SetReserve", AddressArgs{Address: address}, &reply)
}

func (c *Client) SetPayoutToken(symbol string) (*accounting.Settings, error) {
	var reply accounting.Settings
	return &reply, c.call("SetPayoutToken", SymbolArgs{Symbol: symbol}, &reply)
}

func (c *Client) Settings() (*accounting.Settings, error) {
	var reply accounting.Settings
	return &reply, c.call("Settings", nil, &reply)
}

func (c *Client) GrantRole(role, account string) (bool, error) {
	var reply RoleReply
	err := c.call("GrantRole", RoleArgs{Role: role, Account: account}, &reply)
	return reply.Changed, err
}

func (c *Client) RevokeRole(role, account string) (bool, error) {
	var reply RoleReply
	err := c.call("RevokeRole", RoleArgs{Role: role, Account: account}, &reply)
	return reply.Changed, err
}

func (c *Client) HasRole(role, account string) (bool, error) {
	var reply RoleReply
	err := c.call("HasRole", RoleArgs{Role: role, Account: account}, &reply)
	return reply.Has, err
}

func (c *Client) Mint(to, amount string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Mint", TokenArgs{Account: to, Amount: amount}, &reply)
}

func (c *Client) Balance(symbol, account string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Balance", TokenArgs{Symbol: symbol, Account: account}, &reply)
}

func (c *Client) Allowance(symbol, owner, spender string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Allowance", TokenArgs{Symbol: symbol, Account: owner, Spender: spender}, &reply)
}

func (c *Client) Transfer(symbol, to, amount string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Transfer", TokenArgs{Symbol: symbol, Account: to, Amount: amount}, &reply)
}

func (c *Client) Approve(symbol, spender, amount string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("Approve", TokenArgs{Symbol: symbol, Spender: spender, Amount: amount}, &reply)
}

func (c *Client) IncreaseApproval(symbol, spender, amount string) (*Amount, error) {
	var reply Amount
	return &reply, c.call("IncreaseApproval", TokenArgs{Symbol: symbol, Spender: spender, Amount: amount}, &reply)
}

func (c *Client) Events(filter accounting.EventFilter) (*accounting.EventPage, error) {
	var reply accounting.EventPage
	return &reply, c.call("Events", filter, &reply)
}

func (c *Client) DayStatus() (*daykeeper.DayStatus, error) {
	var reply daykeeper.DayStatus
	return &reply, c.call("DayStatus", nil, &reply)
}

func (c *Client) String() string {
	return fmt.Sprintf("ledger api at %s", c.URL)
}
